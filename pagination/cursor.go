package pagination

// Cursor tracks paging progress of one collection.
type Cursor struct {
	Page    int  `json:"page"`
	HasMore bool `json:"hasMore"`
	Loading bool `json:"loading"`
	Loaded  bool `json:"loaded"`
}

// NextPage is the page index the next fetch should request
func (c Cursor) NextPage() int {
	if !c.Loaded {
		return 0
	}
	return c.Page + 1
}

// CanLoadMore reports whether a fetch for the next page may start
func (c Cursor) CanLoadMore() bool {
	if c.Loading {
		return false
	}
	return !c.Loaded || c.HasMore
}

// Begin marks a fetch as started. ok is false when one is already running or
// there is nothing left to fetch. A refresh (page 0) is allowed whenever no
// fetch is running.
func (c Cursor) Begin(refresh bool) (next Cursor, page int, ok bool) {
	if c.Loading {
		return c, 0, false
	}
	if refresh {
		c.Loading = true
		return c, 0, true
	}
	if !c.CanLoadMore() {
		return c, 0, false
	}
	page = c.NextPage()
	c.Loading = true
	return c, page, true
}

// Done records a successful merge of page
func (c Cursor) Done(page int, hasMore bool) Cursor {
	c.Page = page
	c.HasMore = hasMore
	c.Loading = false
	c.Loaded = true
	return c
}

// Fail clears the loading flag and nothing else
func (c Cursor) Fail() Cursor {
	c.Loading = false
	return c
}

// ScrollTrigger fires once each time the end-of-list sentinel becomes visible.
type ScrollTrigger struct {
	visible bool
}

// Observe reports the sentinel visibility and returns true on a hidden to
// visible crossing.
func (t *ScrollTrigger) Observe(visible bool) bool {
	fire := visible && !t.visible
	t.visible = visible
	return fire
}

func (t *ScrollTrigger) Reset() {
	t.visible = false
}
