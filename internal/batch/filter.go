package batch

import (
	"fmt"

	"github.com/temirov/gitmigrate/internal/config"
	"github.com/temirov/gitmigrate/internal/matcher"
)

const filterCompileErrorTemplateConstant = "invalid repository filter: %w"

// Filter keeps tasks whose name equals, ignoring case, or matches one of the glob
// patterns. An empty pattern list keeps every task. Input order is preserved.
func Filter(tasks []config.RepositoryTask, patterns []string) ([]config.RepositoryTask, error) {
	nameMatcher, compileError := matcher.Compile(patterns, matcher.Options{CaseInsensitive: true})
	if compileError != nil {
		return nil, fmt.Errorf(filterCompileErrorTemplateConstant, compileError)
	}
	if nameMatcher.Empty() {
		return append([]config.RepositoryTask(nil), tasks...), nil
	}

	selected := make([]config.RepositoryTask, 0, len(tasks))
	for _, task := range tasks {
		if nameMatcher.Match(task.Name) {
			selected = append(selected, task)
		}
	}
	return selected, nil
}
