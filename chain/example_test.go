package chain_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/dcshock/dbchain/chain"
)

// Example: a tiny key/value catalog as the handle. The first step loads a
// category, the second turns its items into display labels.

type catalog struct {
	categories map[string][]string
}

func loadCategory(name string) chain.Step[*catalog] {
	return func(ctx context.Context, c *catalog) (any, error) {
		items, ok := c.categories[name]
		if !ok {
			return nil, fmt.Errorf("category %q not found", name)
		}
		return items, nil
	}
}

func labelItems(prefix string) chain.ResultStep[*catalog] {
	return chain.Prior(1, func(ctx context.Context, c *catalog, items []string) (any, error) {
		labels := make([]string, len(items))
		for i, it := range items {
			labels[i] = prefix + it
		}
		return labels, nil
	})
}

func TestExampleCatalogPipeline(t *testing.T) {
	ctx := context.Background()
	cat := &catalog{categories: map[string][]string{
		"fruit": {"apple", "pear"},
	}}

	result, err := chain.Use(cat).
		Chain(loadCategory("fruit"), nil).
		ChainResults(labelItems("fresh "), nil).
		Invoke(ctx)
	if err != nil {
		t.Fatalf("pipeline failed: %v", err)
	}

	labels, ok := result.([]string)
	if !ok {
		t.Fatalf("expected []string, got %T", result)
	}
	if len(labels) != 2 || labels[0] != "fresh apple" || labels[1] != "fresh pear" {
		t.Errorf("labels = %v", labels)
	}
}
