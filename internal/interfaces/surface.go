package interfaces

// Surface is a named output that accepts structured content. Each refresh
// replaces the surface's content wholesale; there is no incremental diffing.
type Surface interface {
	Replace(content string)
}
