/*
Package dsl provides a fluent Go builder for tree definitions.

It produces the same domain.TreeSpec a YAML file would, so trees defined in code
go through the same registry, validation and stores as trees on disk.

Example usage:

	b := dsl.New("patrol").Describe("guard loop")

	b.Add("root").Selector("attack", "walk")
	b.Add("attack").Sequence("see-enemy", "strike")
	b.Add("see-enemy").Kind("fail")
	b.Add("strike").Kind("succeed")
	b.Add("walk").Kind("wait").Set("ticks", 3)

	store, err := b.Build()
	if err != nil {
		log.Fatal(err)
	}
	engine, err := canopy.New("", canopy.WithStore(store, "patrol"))

The first node added is the root unless Root says otherwise.
*/
package dsl
