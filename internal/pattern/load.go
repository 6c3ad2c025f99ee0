package pattern

import (
	"log/slog"
	"os"
)

// LoadReport summarises a LoadFiles call.
type LoadReport struct {
	Files    int      // документы, прочитанные без ошибок
	Patterns int      // принятые правила
	Rejected int      // отброшенные записи
	Failed   []string // файлы, которые не удалось прочитать или разобрать
}

// LoadFiles reads rule documents from disk. It never fails: unreadable or
// unparsable files are logged and contribute no patterns, invalid entries
// are logged and dropped.
func LoadFiles(logger *slog.Logger, paths ...string) ([]*Pattern, LoadReport) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	var (
		out []*Pattern
		rep LoadReport
	)
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			logger.Error("cannot read pattern file", "path", path, "err", err)
			rep.Failed = append(rep.Failed, path)
			continue
		}
		doc, err := ParseDocument(path, data)
		if err != nil {
			logger.Error("cannot parse pattern file", "path", path, "err", err)
			rep.Failed = append(rep.Failed, path)
			continue
		}
		rep.Files++
		ps, err := Load(doc)
		for _, ve := range ValidationErrors(err) {
			logger.Warn("skipping pattern", "path", path, "line", ve.Line, "regex", ve.Regex, "reason", ve.Reason, "err", ve.Err)
			rep.Rejected++
		}
		logger.Debug("loaded pattern file", "path", path, "patterns", len(ps))
		out = append(out, ps...)
	}
	rep.Patterns = len(out)
	return out, rep
}
