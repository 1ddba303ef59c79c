package services

import (
	"fmt"

	"dbassist/internal/session"
	"dbassist/pkg/dbatypes"
)

// App bundles the wired chat engine for a frontend. The session store is the
// only shared mutable state; the services around it are stateless
// orchestrators.
type App struct {
	Config    *ConfigurationService
	Client    *APIClientService
	Store     *session.Store
	Chat      *ChatService
	Execution *ExecutionService
	Local     *LocalExecutorService
}

// Bootstrap loads configuration, wires the services, registers them in the
// global registry, and initializes everything. With useLocal set, SQL
// execution goes to the local SQLite executor instead of the remote API.
func Bootstrap(useLocal bool) (*App, error) {
	config := NewConfigurationService()
	if err := config.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	client := NewAPIClientService(config.APIBaseURL(), config.APIToken())
	client.SetTimeout(config.RequestTimeout())

	store := session.NewStore()
	chat := NewChatService(store, client)

	var executor dbatypes.SQLExecutor = client
	var local *LocalExecutorService
	if useLocal {
		path := config.LocalDBPath()
		if path == "" {
			return nil, fmt.Errorf("local execution requires %s to be configured", ConfigKeyLocalDB)
		}
		local = NewLocalExecutorService(path)
		executor = local
	}
	execution := NewExecutionService(store, executor)

	registry := NewRegistry()
	servicesToRegister := []dbatypes.Service{config, client, chat, execution}
	if local != nil {
		servicesToRegister = append(servicesToRegister, local)
	}
	for _, service := range servicesToRegister {
		if err := registry.RegisterService(service); err != nil {
			return nil, err
		}
	}
	if err := registry.InitializeAll(); err != nil {
		return nil, err
	}
	SetGlobalRegistry(registry)

	return &App{
		Config:    config,
		Client:    client,
		Store:     store,
		Chat:      chat,
		Execution: execution,
		Local:     local,
	}, nil
}
