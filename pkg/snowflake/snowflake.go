package snowflake

// Snowflake generates roughly time-ordered unique int64 ids.
type Snowflake interface {
	Generate() int64
}
