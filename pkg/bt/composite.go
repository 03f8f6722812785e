package bt

// updateSequence ticks children from the active one onward, stopping at the first
// child that does not succeed. That child stays active for the next call.
func (r *Run) updateSequence(n *compiled, s *slot) Status {
	for s.current < len(n.children) {
		status := r.tick(n.children[s.current])
		if status != Success {
			return status
		}
		s.current++
	}
	return Success
}

// updateSelector is the dual of updateSequence: it stops at the first child that does not fail.
func (r *Run) updateSelector(n *compiled, s *slot) Status {
	for s.current < len(n.children) {
		status := r.tick(n.children[s.current])
		if status != Failed {
			return status
		}
		s.current++
	}
	return Failed
}

// updateParallel ticks every child in order. A failure returns immediately and
// siblings are left as their own tick left them.
func (r *Run) updateParallel(n *compiled, s *slot) Status {
	skip := n.node.mode == ParallelSkipCompleted
	for i, child := range n.children {
		s.current = i
		if skip && s.done[i] {
			continue
		}
		switch r.tick(child) {
		case Failed:
			return Failed
		case Success:
			s.succeeded++
			if skip {
				s.done[i] = true
			}
		}
	}
	if s.succeeded >= len(n.children) {
		return Success
	}
	return Running
}
