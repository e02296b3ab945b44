package upstream

// NeedsUpdate decides whether the descriptor has to be rewritten. The check
// is a plain equality test with a force override; upstream tags are taken as
// authoritative, so no ordering semantics are applied.
func NeedsUpdate(current, resolved string, force bool) bool {
	return resolved != current || force
}
