package domain

// Feature definition IDs relevant to group-connection eligibility.
const (
	// FeaturePublishingSite is the SharePoint Server Publishing
	// Infrastructure feature at site collection scope. Publishing sites
	// cannot be group-connected.
	FeaturePublishingSite = "f6924d36-2fa8-4f0b-b16d-06b7250180fa"

	// FeaturePublishingWeb is the publishing feature at web scope.
	FeaturePublishingWeb = "94c94ca6-b32f-4da9-a9e3-1f3d343d7ecb"

	// FeatureBlockModernListsSite prevents modern list UI at site scope.
	// Non-blocking for conversion, but it is deactivated as a side effect.
	FeatureBlockModernListsSite = "e3540c7d-6bea-403c-a224-1a12eafee4c4"

	// FeatureBlockModernListsWeb is the web-scope counterpart.
	FeatureBlockModernListsWeb = "52e14b6f-b1bb-4969-b89b-c4faa56745ef"
)
