package canopy_test

import (
	"context"
	"fmt"
	"log"

	"github.com/aretw0/canopy"
	"github.com/aretw0/canopy/pkg/adapters/memory"
	"github.com/aretw0/canopy/pkg/domain"
)

// ExampleNew_memory drives two agents over a tree kept in an in-memory store.
func ExampleNew_memory() {
	ctx := context.Background()
	store := memory.NewStore()
	err := store.Save(ctx, "guard", &domain.TreeSpec{
		ID:   "guard",
		Root: "patrol",
		Nodes: []domain.NodeSpec{
			{ID: "patrol", Kind: "sequence", Children: []string{"walk", "look"}},
			{ID: "walk", Kind: "wait", Config: map[string]any{"ticks": 2}},
			{ID: "look", Kind: "succeed"},
		},
	})
	if err != nil {
		log.Fatal(err)
	}

	engine, err := canopy.New("", canopy.WithStore(store, "guard"))
	if err != nil {
		log.Fatal(err)
	}

	d := engine.Driver()
	for _, id := range []string{"alice", "bob"} {
		if _, err := d.Spawn(ctx, id); err != nil {
			log.Fatal(err)
		}
	}

	for round := 1; round <= 2; round++ {
		results, err := d.TickAll(ctx)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(round, results["alice"], results["bob"])
	}
	// Output:
	// 1 running running
	// 2 success success
}
