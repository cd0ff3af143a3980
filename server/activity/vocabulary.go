package activity

// ActivityPub and ActivityStreams vocabulary

const (
	IDProperty        = "id"
	TypeProperty      = "type"
	PublishedProperty = "published"
)

const (
	Context        = "https://www.w3.org/ns/activitystreams"
	PublicAddress  = "https://www.w3.org/ns/activitystreams#Public"
	ContentType    = `application/activity+json`
	ContentTypeLD  = `application/ld+json; profile="https://www.w3.org/ns/activitystreams"`
	ContentTypeJRD = "application/jrd+json"
)

// ActivityPub object types
const (
	NoteType   = "Note"
	PersonType = "Person"
)

// Kind is the literal type of one of the named activity refinements.
type Kind string

// ActivityPub activity types with their own refinement
const (
	CreateType   Kind = "Create"
	FollowType   Kind = "Follow"
	LikeType     Kind = "Like"
	AnnounceType Kind = "Announce"
)

// Kinds lists the named refinements in a fixed order.
var Kinds = []Kind{CreateType, FollowType, LikeType, AnnounceType}

const (
	// ActivityPub time format string
	TimeFormat = "2006-01-02T15:04:05Z"
)
