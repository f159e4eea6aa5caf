package verdict

import "github.com/trackline/verdict/id"

// ID is the primary identifier type for all Verdict entities.
type ID = id.ID

// Prefix identifies the entity type encoded in a TypeID.
type Prefix = id.Prefix
