package processor

import (
	"fmt"
	"path/filepath"

	"github.com/mpyw/ifcollapse/internal/skip"
	"github.com/mpyw/ifcollapse/pkg/analyzer"
)

// TransformSource transforms a single source file without touching the file
// system. The dialect is chosen from filename's extension. Reports describe
// the input text; the returned source is src itself when nothing changed.
func (p *Processor) TransformSource(src []byte, filename string) ([]byte, []analyzer.Report, error) {
	d, ok := p.registry.ForPath(filename)
	if !ok {
		return nil, nil, fmt.Errorf("%w for %q", ErrNoDialect, filepath.Ext(filename))
	}

	text := string(src)

	// Check for file-level skip directive
	if skip.HasFileDirective(text, d.LineComment) {
		p.logger.Debug("skipped file", "file", filename, "reason", "skip directive")
		return src, nil, nil
	}

	actions, reports, err := p.detectActions(text, d, filename)
	if err != nil {
		return nil, nil, err
	}
	if p.sink != nil {
		for _, r := range reports {
			p.sink.Report(r)
		}
	}

	out := text
	for _, act := range actions {
		if out, err = act.Apply(out); err != nil {
			return nil, nil, err
		}
	}

	if out == text {
		return src, reports, nil
	}
	return []byte(out), reports, nil
}
