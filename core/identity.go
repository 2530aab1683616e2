package core

type IdentityKind string

const (
	// IdentityCanonical identifies conformance/terminology artifacts by
	// canonical URL + version; the same URL at different versions yields
	// distinct identities.
	IdentityCanonical IdentityKind = "canonical"

	// IdentityLogical identifies clinical resources by type + local id.
	IdentityLogical IdentityKind = "logical"
)

// IdentityKey is the resolved key used to decide whether two ingested
// resources are the same thing. Unset discriminator fields are empty strings.
type IdentityKey struct {
	Kind            IdentityKind
	ResourceType    string
	CanonicalURL    string
	ArtifactVersion string
	LogicalID       string
	PartitionKey    string
}

// ResolveIdentity maps extracted resource fields to an identity key. A
// non-empty canonical URL wins regardless of resource type: conformance
// artifacts are versioned as a first-class concern, clinical resources are
// not. A resource missing both canonical URL and logical id still resolves,
// with empty-string placeholders; multiple such resources of one type share
// an identity, which is accepted behavior rather than special-cased.
func ResolveIdentity(fields ResourceFields, partitionKey string) IdentityKey {
	if fields.CanonicalURL != "" {
		return IdentityKey{
			Kind:            IdentityCanonical,
			ResourceType:    fields.ResourceType,
			CanonicalURL:    fields.CanonicalURL,
			ArtifactVersion: fields.ArtifactVersion,
			PartitionKey:    partitionKey,
		}
	}
	return IdentityKey{
		Kind:         IdentityLogical,
		ResourceType: fields.ResourceType,
		LogicalID:    fields.LogicalID,
		PartitionKey: partitionKey,
	}
}
