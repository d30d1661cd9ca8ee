// File: nofus/doc.go

// Package nofus reads line-oriented configuration files: key/value
// assignments with optional scoping, line comments, quoted values with
// escaping, multi-valued keys and boolean flags.
//
// Grammar (default tokens):
//
//	# comment                    // also a comment
//	var1 = 42
//	name2 = " Jane Doe "         # quoted: whitespace kept
//	words = "Quotes \"inside\""  # escape character removed
//	novalue =                    # empty string
//	enable_keys                  # flag, reads as "true"
//	multi = abc
//	multi = xyz                  # GetArray("multi") has both
//	marbles.green = 2            # inline scope
//	[sql.maria]                  # section scope
//	auth.user = apache           # key "sql.maria.auth.user"
//	[]                           # back to the root scope
//
// Every line is classified as blank, scope declaration, assignment or
// malformed. Malformed lines are collected as *ParseError values and the rest
// of the file is still loaded, so a failed Load leaves the valid keys
// queryable.
//
// Quick Start:
//
//	cfg := nofus.New("app.conf")
//	if err := cfg.Load(); err != nil {
//	    for _, pe := range nofus.ParseErrors(err) {
//	        log.Printf("%s", pe)
//	    }
//	}
//	user := cfg.GetOr("sql.maria.auth.user", "nobody")
//
//	if db := cfg.Scope("sql.maria"); db != nil {
//	    pw, _ := db.Get("auth.pw")
//	}
//
// Values are kept as text; the engine does no type conversion. Scan decodes
// a scope into a struct when typed access is wanted.
//
// Defaults can be preloaded from maps, structs, or TOML, JSON and YAML files.
// A default never replaces a value read from the file, whichever is loaded
// first.
//
// Thread Safety:
// ConfigFile methods are safe for concurrent use. A ConfigFile watched with
// AutoUpdate reloads in the background while readers continue.
package nofus
