package parser

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	ts "github.com/tree-sitter/go-tree-sitter"
)

// parserPool keeps idle parsers for one grammar in a buffered channel.
// Parsers are created on demand up to maxSize; past that, acquire waits
// for a release or for the context to end.
type parserPool struct {
	idle    chan *ts.Parser
	grammar *ts.Language
	lang    Language
	maxSize int

	mutex   sync.Mutex
	created int
	closed  bool

	logger *slog.Logger
}

func newParserPool(lang Language, grammar *ts.Language, maxSize int, logger *slog.Logger) *parserPool {
	return &parserPool{
		idle:    make(chan *ts.Parser, maxSize),
		grammar: grammar,
		lang:    lang,
		maxSize: maxSize,
		logger:  logger,
	}
}

func (p *parserPool) acquire(ctx context.Context) (*ts.Parser, error) {
	select {
	case parser := <-p.idle:
		return parser, nil
	default:
	}

	p.mutex.Lock()
	if p.closed {
		p.mutex.Unlock()
		return nil, fmt.Errorf("pool closed")
	}
	if p.created < p.maxSize {
		parser := ts.NewParser()
		if err := parser.SetLanguage(p.grammar); err != nil {
			parser.Close()
			p.mutex.Unlock()
			return nil, fmt.Errorf("set language: %w", err)
		}
		p.created++
		p.mutex.Unlock()
		return parser, nil
	}
	p.mutex.Unlock()

	select {
	case parser, ok := <-p.idle:
		if !ok {
			return nil, fmt.Errorf("pool closed")
		}
		return parser, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (p *parserPool) release(parser *ts.Parser) {
	if parser == nil {
		return
	}

	p.mutex.Lock()
	defer p.mutex.Unlock()
	if p.closed {
		parser.Close()
		return
	}

	select {
	case p.idle <- parser:
	default:
		parser.Close()
		p.logger.Warn("parser pool full, closing excess parser", "language", p.lang.String())
	}
}

func (p *parserPool) close() {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	close(p.idle)

	for parser := range p.idle {
		parser.Close()
	}
}

func (p *parserPool) createdCount() int {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.created
}
