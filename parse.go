// FILE: nofus/parse.go
package nofus

// parser runs one pass over the lines of a file. It never stops on a bad
// line: the error is collected and the next line is read.
type parser struct {
	rules *Rules
	store *Store
	scope scopeTracker
	errs  []*ParseError
}

func newParser(rules *Rules, store *Store) *parser {
	return &parser{rules: rules, store: store}
}

func (p *parser) parseLine(lineNo int, raw string) {
	line := trimLineEnding(raw)
	cl := Classify(line, p.rules)

	switch cl.Kind {
	case LineBlank:
	case LineScope:
		p.scope.enter(cl.Segments)
	case LineAssignment:
		key := p.rules.JoinKey(p.scope.qualify(cl.Segments)...)
		p.store.Record(key, extractClassified(line, cl, p.rules))
	case LineMalformed:
		p.errs = append(p.errs, &ParseError{
			Line:   lineNo,
			Text:   line,
			Reason: cl.Reason,
			Kind:   cl.Err,
		})
	}
}

func (p *parser) parseLines(lines []string) []*ParseError {
	for i, line := range lines {
		p.parseLine(i+1, line)
	}
	return p.errs
}
