package model

// PushOptions selects how a branch is pushed.
type PushOptions struct {
	ForceWithLease bool
	SetUpstream    bool
}

// Remote is a named git remote and its fetch URL.
type Remote struct {
	Name string `json:"name"`
	URL  string `json:"url" masq:"secret"`
}
