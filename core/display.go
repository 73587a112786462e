package core

// Category is the colour category a status is displayed with.
type Category string

const (
	CategoryInfo         Category = "info"
	CategoryWarning      Category = "warning"
	CategorySuccess      Category = "success"
	CategoryDanger       Category = "danger"
	CategoryDangerStrong Category = "danger-strong"
	CategoryNeutral      Category = "neutral"
)
