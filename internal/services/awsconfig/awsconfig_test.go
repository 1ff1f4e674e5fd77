package awsconfig_test

import (
	"context"
	"testing"

	"sanchaar/internal/config"
	"sanchaar/internal/services/awsconfig"
)

func TestLoadUsesStaticCredentials(t *testing.T) {
	awsCfg, err := awsconfig.Load(context.Background(), config.AWS{
		Region:          "ap-south-1",
		AccessKeyID:     "AKIDEXAMPLE",
		SecretAccessKey: "secret",
	})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if awsCfg.Region != "ap-south-1" {
		t.Fatalf("expected region ap-south-1, got %q", awsCfg.Region)
	}
	creds, err := awsCfg.Credentials.Retrieve(context.Background())
	if err != nil {
		t.Fatalf("retrieve credentials: %v", err)
	}
	if creds.AccessKeyID != "AKIDEXAMPLE" {
		t.Fatalf("expected static access key, got %q", creds.AccessKeyID)
	}
}

func TestEndpoint(t *testing.T) {
	if awsconfig.Endpoint("") != nil {
		t.Fatal("expected nil endpoint for empty value")
	}
	if got := awsconfig.Endpoint("http://localhost:4566"); got == nil || *got != "http://localhost:4566" {
		t.Fatalf("unexpected endpoint %v", got)
	}
}
