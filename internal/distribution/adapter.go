package distribution

import (
	"context"
	"fmt"
	"sort"

	"sanchaar/internal/content"
	"sanchaar/internal/services"
)

// VerticalFraming is the rendition every reference platform publishes.
const VerticalFraming = "9:16"

// Spec describes a platform's publishing constraints.
type Spec struct {
	Platform          content.Platform
	Framing           string
	CaptionLimit      int
	RequiresRecipient bool
}

// Reference platform constraints.
var (
	WhatsAppSpec  = Spec{Platform: content.PlatformWhatsApp, Framing: VerticalFraming, CaptionLimit: 1024, RequiresRecipient: true}
	ShareChatSpec = Spec{Platform: content.PlatformShareChat, Framing: VerticalFraming, CaptionLimit: 500}
	InstagramSpec = Spec{Platform: content.PlatformInstagram, Framing: VerticalFraming, CaptionLimit: 2200}
)

// Adapter publishes one post to one platform as a single logical attempt.
type Adapter interface {
	Spec() Spec
	Attempt(ctx context.Context, post content.Post) (string, error)
}

// Publisher is a single-call platform API.
type Publisher interface {
	Publish(ctx context.Context, post content.Post) (string, error)
}

// ContainerPublisher is a two-phase platform API: a media container is
// created first and then published.
type ContainerPublisher interface {
	CreateContainer(ctx context.Context, post content.Post) (string, error)
	PublishContainer(ctx context.Context, containerID string) (string, error)
}

type directAdapter struct {
	spec      Spec
	publisher Publisher
}

// NewDirectAdapter wraps a single-call publisher.
func NewDirectAdapter(spec Spec, publisher Publisher) Adapter {
	return &directAdapter{spec: spec, publisher: publisher}
}

func (a *directAdapter) Spec() Spec { return a.spec }

func (a *directAdapter) Attempt(ctx context.Context, post content.Post) (string, error) {
	id, err := a.publisher.Publish(ctx, post)
	if err != nil {
		return "", services.External(string(a.spec.Platform), "publish", err)
	}
	return id, nil
}

type twoPhaseAdapter struct {
	spec      Spec
	publisher ContainerPublisher
}

// NewTwoPhaseAdapter wraps a container publisher. Both phases must succeed
// for the attempt to succeed; the publish phase is skipped when container
// creation fails.
func NewTwoPhaseAdapter(spec Spec, publisher ContainerPublisher) Adapter {
	return &twoPhaseAdapter{spec: spec, publisher: publisher}
}

func (a *twoPhaseAdapter) Spec() Spec { return a.spec }

func (a *twoPhaseAdapter) Attempt(ctx context.Context, post content.Post) (string, error) {
	containerID, err := a.publisher.CreateContainer(ctx, post)
	if err != nil {
		return "", services.External(string(a.spec.Platform), "create container", err)
	}
	if containerID == "" {
		return "", services.External(string(a.spec.Platform), "create container", fmt.Errorf("empty container id"))
	}
	id, err := a.publisher.PublishContainer(ctx, containerID)
	if err != nil {
		return "", services.External(string(a.spec.Platform), "publish container", fmt.Errorf("container %s: %w", containerID, err))
	}
	return id, nil
}

// Registry maps platforms to adapters.
type Registry struct {
	adapters map[content.Platform]Adapter
}

// NewRegistry indexes adapters by platform. A later adapter for the same
// platform replaces an earlier one.
func NewRegistry(adapters ...Adapter) *Registry {
	r := &Registry{adapters: make(map[content.Platform]Adapter, len(adapters))}
	for _, adapter := range adapters {
		if adapter == nil {
			continue
		}
		r.adapters[adapter.Spec().Platform] = adapter
	}
	return r
}

// Lookup returns the adapter registered for platform.
func (r *Registry) Lookup(platform content.Platform) (Adapter, bool) {
	if r == nil {
		return nil, false
	}
	adapter, ok := r.adapters[platform]
	return adapter, ok
}

// Platforms lists the registered platforms in sorted order.
func (r *Registry) Platforms() []content.Platform {
	if r == nil {
		return nil
	}
	out := make([]content.Platform, 0, len(r.adapters))
	for platform := range r.adapters {
		out = append(out, platform)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
