package constants

// Speaker constants
const (
	// SpeakerName is the placeholder name for the speaking user in the graph
	SpeakerName = "User"
)

// Graph write constants
const (
	// MaxBatchOps is the maximum number of write operations per Firestore batch
	MaxBatchOps = 500
)

// Retrieval constants
const (
	// QueryChunkSize is the maximum number of names per array-contains-any query
	QueryChunkSize = 30
	// MaxHops is the breadth-first traversal depth
	MaxHops = 2
	// Fanout is the maximum number of newly discovered names carried into the next hop
	Fanout = 20
	// VisitedCap bounds the total distinct names considered across a traversal
	VisitedCap = 200
	// MaxFacts is the maximum number of facts returned per turn
	MaxFacts = 12
	// MaxAvoidTopics is the maximum number of avoid-topics returned per turn
	MaxAvoidTopics = 8
	// MaxTextSeeds caps how many seeds are pulled out of raw text when the
	// graph and mention cache offer nothing
	MaxTextSeeds = 8
)

// Extraction constants
const (
	// ConfidenceFloor is the minimum confidence for an edge to be persisted
	ConfidenceFloor = 0.7
	// DefaultConfidence is assumed when the extraction omits a confidence score
	DefaultConfidence = 0.8
)

// Coreference constants
const (
	// MRUCap is the maximum length of each most-recently-used name list
	MRUCap = 8
	// MinPronounsForLLM is the pronoun count at which the LLM rewrite kicks in;
	// below it the heuristic pass alone is cheaper and good enough
	MinPronounsForLLM = 2
)
