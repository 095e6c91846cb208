//go:build !integration

package storage

import (
	"context"
	"testing"
	"time"
)

func TestArtifactKey(t *testing.T) {
	at := time.Date(2025, 3, 1, 23, 30, 0, 0, time.FixedZone("X", -3*3600))
	got := ArtifactKey(42, "01HGEN", at, "text.html")
	if got != "42/2025-03-02/01HGEN/text.html" {
		t.Fatalf("got %s", got)
	}
}

func TestObjectURLEscapesSegments(t *testing.T) {
	s := &MinioStore{bucket: "vocab", host: "https://s3.local"}
	if got := s.objectURL("42/2025-03-02/a b/text.html"); got != "https://s3.local/vocab/42/2025-03-02/a%20b/text.html" {
		t.Fatalf("got %s", got)
	}
}

func TestNoopStore(t *testing.T) {
	if u, err := (NoopStore{}).Put(context.Background(), "k", []byte("x"), "text/html"); err != nil || u != "" {
		t.Fatalf("noop: %q %v", u, err)
	}
}
