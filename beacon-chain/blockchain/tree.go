package blockchain

import (
	"context"
	"fmt"
	"net/http"
	"sort"

	"github.com/emicklei/dot"
	forkchoicetypes "github.com/prysmaticlabs/forkchoice/beacon-chain/forkchoice/types"
)

const template = `<html>
<head>
    <script src="//cdnjs.cloudflare.com/ajax/libs/viz.js/2.1.2/viz.js"></script>
    <script src="//cdnjs.cloudflare.com/ajax/libs/viz.js/2.1.2/full.render.js"></script>
<body>
    <script type="application/javascript">
        var graph = ` + "`%s`;" + `
        var viz = new Viz();
        viz.renderSVGElement(graph) // reading the graph.
            .then(function(element) {
                document.body.appendChild(element); // appends to document.
            })
            .catch(error => {
                viz = new Viz();
                console.error(error);
            });
    </script>
</head>
</body>
</html>`

var statusColors = map[forkchoicetypes.ExecutionStatus]string{
	forkchoicetypes.Syncing: "orange",
	forkchoicetypes.Valid:   "black",
	forkchoicetypes.Invalid: "red",
}

// TreeGraph renders every fork choice node in graphviz format. The head is
// green, justified and finalized blocks are filled.
func (s *Service) TreeGraph(ctx context.Context) (string, error) {
	f := s.cfg.ForkChoiceStore
	tips, _ := f.Tips()
	seen := make(map[[32]byte]*forkchoicetypes.ProtoBlock)
	for _, tip := range tips {
		ancestors, err := f.AllAncestors(ctx, tip)
		if err != nil {
			return "", err
		}
		for _, b := range ancestors {
			seen[b.Root] = b
		}
	}
	blocks := make([]*forkchoicetypes.ProtoBlock, 0, len(seen))
	for _, b := range seen {
		blocks = append(blocks, b)
	}
	sort.Slice(blocks, func(i, j int) bool {
		if blocks[i].Slot == blocks[j].Slot {
			return string(blocks[i].Root[:]) < string(blocks[j].Root[:])
		}
		return blocks[i].Slot < blocks[j].Slot
	})

	graph := dot.NewGraph(dot.Directed)
	graph.Attr("rankdir", "RL")
	graph.Attr("labeljust", "l")

	head := s.HeadRoot()
	justified := f.JustifiedCheckpoint().Root
	finalized := f.FinalizedCheckpoint().Root
	dotNodes := make(map[[32]byte]dot.Node, len(blocks))
	for _, b := range blocks {
		label := fmt.Sprintf("slot: %d\n root: %s\n weight: %d\n execution: %s", b.Slot, logRoot(b.Root), b.Weight, b.ExecutionStatus)
		n := graph.Node(logRoot(b.Root)).Box().Attr("label", label)
		if c, ok := statusColors[b.ExecutionStatus]; ok {
			n = n.Attr("fontcolor", c)
		}
		if b.Root == head {
			n = n.Attr("color", "green")
		}
		switch b.Root {
		case finalized:
			n = n.Attr("style", "filled").Attr("fillcolor", "lightblue")
		case justified:
			n = n.Attr("style", "filled").Attr("fillcolor", "lightyellow")
		}
		dotNodes[b.Root] = n
	}
	for _, b := range blocks {
		if parent, ok := dotNodes[b.ParentRoot]; ok {
			graph.Edge(dotNodes[b.Root], parent)
		}
	}
	return graph.String(), nil
}

// TreeHandler is a handler to serve /tree page in metrics.
func (s *Service) TreeHandler(w http.ResponseWriter, r *http.Request) {
	select {
	case <-s.started:
	default:
		http.Error(w, "Fork choice is not ready", http.StatusServiceUnavailable)
		return
	}
	graph, err := s.TreeGraph(r.Context())
	if err != nil {
		log.WithError(err).Error("Failed to render fork choice tree")
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html")
	w.WriteHeader(http.StatusOK)
	if _, err := fmt.Fprintf(w, template, graph); err != nil {
		log.WithError(err).Error("Failed to render fork choice tree")
	}
}
