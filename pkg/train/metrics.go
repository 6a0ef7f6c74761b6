package train

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// chainsCreated counts chains added to any registry.
	chainsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gearwright_chains_created_total",
		Help: "Total gear chains created",
	})

	// edgesTotal counts Connect calls by outcome.
	edgesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gearwright_edges_total",
		Help: "Total drive edges by result",
	}, []string{"result"})

	// regenerations counts gear meshes rebuilt after a parameter change.
	regenerations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gearwright_mesh_regenerations_total",
		Help: "Total gear meshes regenerated",
	})
)

const (
	edgeAccepted   = "accepted"
	edgeCycle      = "rejected_cycle"
	edgeCrossChain = "rejected_cross_chain"
)
