// Copyright (c) 2025 BVK Chaitanya

package cmdutil

import (
	"context"
	"flag"
	"testing"
)

func TestOpenStore(t *testing.T) {
	ctx := context.Background()

	for _, store := range []string{"kv", "sqlite"} {
		var f StoreFlags
		fset := flag.NewFlagSet("test", flag.ContinueOnError)
		f.SetFlags(fset)
		if err := fset.Parse([]string{"-data-dir", t.TempDir(), "-store", store}); err != nil {
			t.Fatal(err)
		}

		s, closer, err := f.OpenStore(ctx)
		if err != nil {
			t.Fatalf("%s: %v", store, err)
		}
		b, err := s.GetOrCreate(ctx, 1)
		if err != nil {
			t.Fatalf("%s: %v", store, err)
		}
		if b.Cash != 1000 {
			t.Fatalf("%s: want default balance, got %s", store, b)
		}
		closer()
	}

	var f StoreFlags
	fset := flag.NewFlagSet("test", flag.ContinueOnError)
	f.SetFlags(fset)
	if err := fset.Parse([]string{"-data-dir", t.TempDir(), "-store", "postgres"}); err != nil {
		t.Fatal(err)
	}
	if _, _, err := f.OpenStore(ctx); err == nil {
		t.Fatalf("postgres without database url must fail")
	}
}
