package shell

// reservedWords seeds tab completion alongside the ledger's table names.
// PartiQL keywords plus the shell's own words.
var reservedWords = []string{
	"start", "commit", "abort",
	"select", "from", "where", "insert", "into", "value", "values",
	"update", "set", "delete", "create", "table", "index", "drop",
	"by", "as", "and", "or", "not", "null", "is", "in", "like",
	"true", "false", "undrop", "history",
	"help", "clear", "exit", "quit",
}
