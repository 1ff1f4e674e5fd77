package objectstore_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"

	"sanchaar/internal/objectstore"
	"sanchaar/internal/services"
)

func TestParseLocator(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		bucket string
		key    string
		ok     bool
	}{
		{name: "s3 uri", input: "s3://uploads/users/u42/clip.mp3", bucket: "uploads", key: "users/u42/clip.mp3", ok: true},
		{name: "bare", input: "uploads/clip.mp3", bucket: "uploads", key: "clip.mp3", ok: true},
		{name: "no key", input: "s3://uploads/", ok: false},
		{name: "no bucket", input: "s3:///clip.mp3", ok: false},
		{name: "empty", input: "", ok: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc, err := objectstore.ParseLocator(tt.input)
			if !tt.ok {
				if !errors.Is(err, services.ErrValidation) {
					t.Fatalf("expected validation error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseLocator failed: %v", err)
			}
			if loc.Bucket != tt.bucket || loc.Key != tt.key {
				t.Fatalf("unexpected locator %+v", loc)
			}
		})
	}
}

func TestLocatorHelpers(t *testing.T) {
	loc := objectstore.Locator{Bucket: "uploads", Key: "users/u42/clip.mp3"}
	if loc.String() != "s3://uploads/users/u42/clip.mp3" {
		t.Fatalf("unexpected String %q", loc.String())
	}
	if loc.Basename() != "clip" {
		t.Fatalf("unexpected Basename %q", loc.Basename())
	}
	if got := objectstore.Prefix("renditions", "9:16", "c-1"); got != "s3://renditions/9:16/c-1/" {
		t.Fatalf("unexpected Prefix %q", got)
	}
}

func TestPresignerResolvesS3Locators(t *testing.T) {
	awsCfg := aws.Config{
		Region:      "ap-south-1",
		Credentials: credentials.NewStaticCredentialsProvider("AKIDEXAMPLE", "secret", ""),
	}
	presigner := objectstore.NewPresigner(awsCfg, "", time.Hour)

	url, err := presigner.ResolveURL(context.Background(), "s3://renditions/9x16/c-1/clip.mp4")
	if err != nil {
		t.Fatalf("ResolveURL failed: %v", err)
	}
	if !strings.HasPrefix(url, "https://") || !strings.Contains(url, "X-Amz-Signature=") {
		t.Fatalf("expected presigned https url, got %q", url)
	}
	if !strings.Contains(url, "c-1/clip.mp4") {
		t.Fatalf("expected key in url, got %q", url)
	}

	passthrough, err := presigner.ResolveURL(context.Background(), "https://cdn.example.com/a.mp4")
	if err != nil || passthrough != "https://cdn.example.com/a.mp4" {
		t.Fatalf("expected https url passthrough, got %q (%v)", passthrough, err)
	}
}
