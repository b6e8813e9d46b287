package constant

const (
	ChatMessageRoleUser = "user"
	ChatMessageRoleAi   = "ai"
)
