package callgraph

// PathStep pairs a path node with the conditional guard that gates the call
// into it, when a branch analysis for the caller is available.
type PathStep struct {
	Node        string
	Guard       string
	Probability float64
}

// EnrichPath attaches guard/probability metadata to each hop in path by
// checking, for the caller at each step, whether the callee name appears
// inside one of bodyBranches[caller]'s branches.
func EnrichPath(path Path, bodyBranches map[string][]Branch) []PathStep {
	steps := make([]PathStep, len(path.Nodes))
	for i, node := range path.Nodes {
		steps[i] = PathStep{Node: node, Probability: 1.0}
		if i == 0 {
			continue
		}
		caller := path.Nodes[i-1]
		branches, ok := bodyBranches[caller]
		if !ok {
			continue
		}
		calleeName := node
		for _, b := range branches {
			for _, c := range b.Calls {
				if c == calleeName || caller+"."+c == calleeName {
					steps[i].Guard = b.Guard
					steps[i].Probability = b.Probability
				}
			}
		}
	}
	return steps
}
