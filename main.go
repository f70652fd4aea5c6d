package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	bookingx "github.com/kritsadaw/tripdesk/agent/agents/booking"
	supervisorx "github.com/kritsadaw/tripdesk/agent/agents/supervisor"
	llmx "github.com/kritsadaw/tripdesk/agent/llm"
	nodex "github.com/kritsadaw/tripdesk/agent/nodes/supervisor"
	statex "github.com/kritsadaw/tripdesk/agent/state"
	configx "github.com/kritsadaw/tripdesk/pkg/config"
	groqx "github.com/kritsadaw/tripdesk/pkg/groq"
	_ "github.com/kritsadaw/tripdesk/pkg/logger/autoload"
)

type AppConfig struct {
	SessionID    string `envconfig:"SESSION_ID" split_words:"true"`
	StoreBackend string `envconfig:"STORE_BACKEND" split_words:"true" default:"memory"`
}

func main() {
	ctx := context.Background()

	appCfg := configx.MustNew[AppConfig]("")
	llmCfg := configx.MustNew[llmx.Config]("GROQ")

	if client := groqx.NewClient(llmCfg.GroqFor(statex.LegNone)); client == nil {
		panic("failed to initialize groq client")
	}

	agents, err := bookingx.NewRegistry(ctx, *llmCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("build agent registry")
	}

	controller, err := supervisorx.New(agents)
	if err != nil {
		log.Fatal().Err(err).Msg("build supervisor")
	}

	store, err := newStore(ctx, appCfg.StoreBackend)
	if err != nil {
		log.Fatal().Err(err).Msg("build session store")
	}

	sessionID := strings.TrimSpace(appCfg.SessionID)
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	session, err := statex.LoadOrCreate(ctx, store, sessionID, time.Now())
	if err != nil {
		log.Fatal().Err(err).Str("session_id", sessionID).Msg("load session")
	}

	runREPL(ctx, controller, store, session)
}

func newStore(ctx context.Context, backend string) (statex.Store, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", "memory":
		return statex.NewMemoryStore(), nil
	case "redis":
		cfg, err := configx.New[statex.UpstashRedisConfig]("UPSTASH_REDIS")
		if err != nil {
			return nil, err
		}
		return statex.NewUpstashRedisStore(*cfg)
	case "postgres":
		cfg, err := configx.New[statex.PostgresConfig]("POSTGRES")
		if err != nil {
			return nil, err
		}
		return statex.NewPostgresStore(ctx, *cfg)
	default:
		return nil, fmt.Errorf("unknown store backend %q", backend)
	}
}

func runREPL(ctx context.Context, controller *supervisorx.Supervisor, store statex.Store, session *statex.SessionState) {
	if session.Log.Len() == 0 {
		fmt.Printf("[supervisor] %s\n", nodex.WelcomeText)
	}

	scanner := bufio.NewScanner(os.Stdin)
	fmt.Print("> ")
	for scanner.Scan() {
		input := strings.TrimSpace(scanner.Text())
		switch {
		case input == "":
			fmt.Print("> ")
			continue
		case input == "exit" || input == "quit":
			return
		}

		session.PendingInput = input
		turns, err := controller.HandleTurn(ctx, session, input)
		if err != nil {
			// Malformed session state or a wiring bug; fatal for this call,
			// surfaced rather than silently defaulted.
			log.Error().Err(err).Msg("turn failed")
			fmt.Print("> ")
			continue
		}

		for _, t := range turns {
			fmt.Printf("[%s] %s\n", t.Speaker, t.Text)
		}

		if err := store.Save(ctx, session); err != nil {
			log.Warn().Err(err).Msg("persist session")
		}
		fmt.Print("> ")
	}
}
