// Package seed builds the demonstration tree the sync server ships with,
// reproducing the reference implementation's basic_example_tree_create
// fixture so the two endpoints have something non-trivial to answer
// against on first boot.
package seed

import "github.com/byldsync/treesync/internal/synctree"

// BasicExampleTree builds the root_node -> {CSE events, ECE events} ->
// event tree from the reference server, refreshes it once, and returns it
// ready to serve.
func BasicExampleTree() (*synctree.SyncTree, error) {
	tree, err := synctree.New([]synctree.Attr{{Key: "name", Value: "root_node"}})
	if err != nil {
		return nil, err
	}
	root := tree.Root()

	cse, err := tree.AddNode(root, []synctree.Attr{{Key: "category_name", Value: "CSE events"}})
	if err != nil {
		return nil, err
	}
	ece, err := tree.AddNode(root, []synctree.Attr{{Key: "category_name", Value: "ECE events"}})
	if err != nil {
		return nil, err
	}

	if _, err := tree.AddNode(cse, []synctree.Attr{
		{Key: "event_name", Value: "Esya Hackathon"},
		{Key: "hours", Value: 16},
	}); err != nil {
		return nil, err
	}
	if _, err := tree.AddNode(cse, []synctree.Attr{
		{Key: "event_name", Value: "Foobar Prosort"},
		{Key: "prizes", Value: 10000},
	}); err != nil {
		return nil, err
	}
	if _, err := tree.AddNode(cse, []synctree.Attr{
		{Key: "event_name", Value: "HackOn"},
		{Key: "organisers", Value: []string{"a", "b"}},
	}); err != nil {
		return nil, err
	}
	if _, err := tree.AddNode(ece, []synctree.Attr{
		{Key: "event_name", Value: "IOT Hackathon"},
		{Key: "food", Value: true},
	}); err != nil {
		return nil, err
	}

	tree.RefreshTree()
	return tree, nil
}
