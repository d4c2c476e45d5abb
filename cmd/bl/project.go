package main

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/gorewood/bloglog/internal/config"
	"github.com/gorewood/bloglog/internal/draft"
	"github.com/gorewood/bloglog/internal/journal"
	"github.com/gorewood/bloglog/internal/llm"
	"github.com/gorewood/bloglog/internal/output"
	"github.com/gorewood/bloglog/internal/registry"
)

const notFoundMessage = "No .bloglog directory found. Run `bl init` or use the web interface at /init first."

// openProject finds the project enclosing the working directory.
func openProject() (*journal.Store, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, output.NewSystemErrorWithCause("cannot determine working directory", err)
	}
	store, err := journal.Open(cwd)
	if errors.Is(err, journal.ErrNotInitialized) {
		return nil, output.NewUserErrorWithCause(notFoundMessage, err)
	}
	if err != nil {
		return nil, output.NewSystemErrorWithCause(err.Error(), err)
	}
	return store, nil
}

// loadSettings reads BLOGLOG_* settings; bad values are user errors.
func loadSettings() (*config.Settings, error) {
	settings, err := config.Load()
	if err != nil {
		return nil, output.NewUserErrorWithCause(err.Error(), err)
	}
	return settings, nil
}

// newGenerator wires a draft generator for store. The LLM client is only
// built when there is something to send.
func newGenerator(store *journal.Store, settings *config.Settings, model string) *draft.Generator {
	if model == "" {
		model = settings.Model
	}
	return &draft.Generator{
		Project:   store,
		Templates: templateLoader(store),
		Connect: func() (draft.Completer, error) {
			client, err := llm.New(model, "", llm.WithTimeout(settings.Timeout))
			if err != nil {
				return nil, err
			}
			return client, nil
		},
	}
}

func templateLoader(store *journal.Store) draft.Loader {
	loader := draft.Loader{ProjectDir: store.TemplatesPath()}
	if dir := config.Dir(); dir != "" {
		loader.GlobalDir = filepath.Join(dir, journal.TemplatesDir)
	}
	return loader
}

func serverRegistry() *registry.Registry {
	return registry.New(config.Dir())
}
