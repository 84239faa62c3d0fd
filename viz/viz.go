// Package viz renders a block tree as a Graphviz digraph, children pointing
// at their parents, adversarial blocks in red and honest blocks in green.
package viz

import (
	"fmt"
	"io"
	"strings"

	"github.com/emicklei/dot"
	"github.com/ghost-attack/ghostsim/ghost"
)

const (
	colorAdversarial = "red"
	colorHonest      = "green"
)

// Graph builds the digraph of tree. Each hint is a group of siblings placed on
// one rank and chained left to right in the given order by invisible edges.
func Graph(tree *ghost.Tree, hints [][]ghost.Digest) *dot.Graph {
	g := dot.NewGraph(dot.Directed)
	g.Attr("rankdir", "BT")
	g.Attr("style", "filled")
	g.Attr("color", "lightgrey")

	nodes := make(map[ghost.Digest]dot.Node, tree.Len())
	order := walk(tree)
	for _, d := range order {
		b := tree.Block(d)
		color := colorHonest
		if b.IsAdversarial() {
			color = colorAdversarial
		}
		nodes[d] = g.Node(nodeID(tree, d)).Box().
			Attr("style", "filled").
			Attr("color", color).
			Attr("label", label(tree, d, b))
	}
	for _, d := range order {
		b := tree.Block(d)
		if b.IsGenesis() {
			continue
		}
		g.Edge(nodes[d], nodes[b.Parent])
	}
	for i, group := range hints {
		var ranked []dot.Node
		for _, d := range group {
			if n, ok := nodes[d]; ok {
				ranked = append(ranked, n)
			}
		}
		if len(ranked) < 2 {
			continue
		}
		g.AddToSameRank(fmt.Sprintf("hint-%d", i), ranked...)
		for j := 1; j < len(ranked); j++ {
			g.Edge(ranked[j-1], ranked[j]).Attr("style", "invis")
		}
	}
	return g
}

// Write renders tree to w in DOT syntax.
func Write(w io.Writer, tree *ghost.Tree, hints [][]ghost.Digest) error {
	_, err := io.WriteString(w, Graph(tree, hints).String())
	return err
}

// walk lists the digests of tree breadth first from genesis, children in
// insertion order.
func walk(tree *ghost.Tree) []ghost.Digest {
	order := make([]ghost.Digest, 0, tree.Len())
	order = append(order, tree.Genesis())
	for i := 0; i < len(order); i++ {
		order = append(order, tree.Children(order[i])...)
	}
	return order
}

func nodeID(tree *ghost.Tree, d ghost.Digest) string {
	return "blk_" + tree.Name(d)
}

func label(tree *ghost.Tree, d ghost.Digest, b ghost.Block) string {
	short := tree.Name(d)
	if len(short) > 10 {
		short = short[:10]
	}
	payload := strings.ReplaceAll(string(b.Payload), `"`, "")
	return fmt.Sprintf("%s\nt=%d: %s\n%d votes", short, b.Slot, payload, tree.VoteTally(d))
}
