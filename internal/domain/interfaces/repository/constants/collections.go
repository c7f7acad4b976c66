package repoconstants

const (
	KNOWLEDGE_COLLECTION = "knowledge_documents"

	SESSION_KEY_PREFIX = "session:"
	PURPOSE_KEY_PREFIX = "purpose:"
)
