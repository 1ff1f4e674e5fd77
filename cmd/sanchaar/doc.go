// Command sanchaar is the operator CLI for the content distribution
// pipeline. Each stage has its own entry point so an event source (or an
// operator) can drive one transition at a time; inspection commands read the
// versioned content store directly.
package main
