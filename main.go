// mailreport runs a SQL command and emails the result as an HTML table or
// an xlsx attachment.
//
// Usage:
//
//	mailreport [flags] <config-file> <sql-file-or-command>
//	  config-file          JSON (or YAML/TOML) file with ConnectionStr, Email, Smtp, ...
//	  sql-file-or-command  path to a script file, or the SQL text itself
//	mailreport version
//	  Print the version number
package main

import (
	"mailreport/cmd"

	_ "github.com/denisenkom/go-mssqldb"
	_ "github.com/lib/pq"
	_ "github.com/marcboeker/go-duckdb"
	_ "github.com/mattn/go-sqlite3"
)

func main() {
	cmd.Execute()
}
