// Package config loads, normalizes, and validates Sanchaar configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks for
// platform tokens and AWS keys (WHATSAPP_API_KEY, SHARECHAT_API_KEY,
// INSTAGRAM_ACCESS_TOKEN, AWS_ACCESS_KEY_ID, AWS_SECRET_ACCESS_KEY). Secrets
// are resolved once at load time and read through Config afterwards.
//
// Aspect-ratio profiles live here as data so new ratios can be added in the
// config file without touching the rendition planner.
package config
