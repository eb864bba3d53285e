// Package parserpool keeps ready gnparser instances for concurrent
// parsing of scientific names. Parsing is computation, not I/O.
package parserpool

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/gnames/gnlib/ent/nomcode"
	"github.com/gnames/gnparser"
	"github.com/gnames/gnparser/ent/parsed"
)

// Pool parses names with parsers taken from per-code pools.
type Pool interface {
	// Parse is safe for concurrent use. Codes other than botanical and
	// zoological return an error.
	Parse(name string, code nomcode.Code) (parsed.Parsed, error)

	// Close releases the parsers. The pool cannot be used afterwards.
	Close()
}

type pool struct {
	chans map[nomcode.Code]chan gnparser.GNparser
	once  sync.Once
}

// NewPool creates botanical and zoological pools of jobsNum parsers each.
// Zero jobsNum means runtime.NumCPU().
func NewPool(jobsNum int) Pool {
	if jobsNum <= 0 {
		jobsNum = runtime.NumCPU()
	}
	res := &pool{chans: make(map[nomcode.Code]chan gnparser.GNparser)}
	for _, code := range []nomcode.Code{nomcode.Botanical, nomcode.Zoological} {
		cfg := gnparser.NewConfig(gnparser.OptCode(code))
		res.chans[code] = gnparser.NewPool(cfg, jobsNum)
	}
	return res
}

func (p *pool) Parse(name string, code nomcode.Code) (parsed.Parsed, error) {
	ch, ok := p.chans[code]
	if !ok {
		return parsed.Parsed{}, fmt.Errorf("unsupported nomenclatural code: %v", code)
	}
	parser := <-ch
	res := parser.ParseName(name)
	ch <- parser
	return res, nil
}

func (p *pool) Close() {
	p.once.Do(func() {
		for _, ch := range p.chans {
			close(ch)
			for range ch {
			}
		}
	})
}
