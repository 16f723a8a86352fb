package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jason-s-yu/towerofsins/engine"
	"github.com/jason-s-yu/towerofsins/internal/cache"
	"github.com/jason-s-yu/towerofsins/internal/config"
	"github.com/jason-s-yu/towerofsins/internal/coordinator"
	"github.com/jason-s-yu/towerofsins/internal/database"
	"github.com/jason-s-yu/towerofsins/internal/deck"
	"github.com/jason-s-yu/towerofsins/internal/game"
	"github.com/jason-s-yu/towerofsins/internal/reconnect"
)

type simOptions struct {
	sessions int
	players  int
	seed     uint64
	maxTurns int
	churn    int // every churn-th turn the current player drops and resumes; 0 disables
}

// outcome summarises one simulated session.
type outcome struct {
	SessionID uuid.UUID
	Winner    string
	Sinner    string
	Turns     int
	Purified  int
	Stalled   bool
}

func newSimulateCmd(root *rootOptions) *cobra.Command {
	so := simOptions{}
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Play sessions to completion with bots that play their first legal card",
		RunE: func(cmd *cobra.Command, args []string) error {
			if so.players < 2 || so.players > engine.MaxPlayers {
				return fmt.Errorf("--players must be between 2 and %d", engine.MaxPlayers)
			}
			if so.sessions < 1 {
				return errors.New("--sessions must be at least 1")
			}
			outcomes, err := runSimulation(cmd.Context(), root.cfg, so)
			if err != nil {
				return err
			}
			printOutcomes(cmd.OutOrStdout(), outcomes)
			return nil
		},
	}
	cmd.Flags().IntVar(&so.sessions, "sessions", 1, "number of sessions to run in parallel")
	cmd.Flags().IntVar(&so.players, "players", 3, "players per session")
	cmd.Flags().Uint64Var(&so.seed, "seed", 0, "deal seed, 0 for random")
	cmd.Flags().IntVar(&so.maxTurns, "max-turns", 2000, "give up on a session after this many turns")
	cmd.Flags().IntVar(&so.churn, "churn", 0, "disconnect and resume the current player every N turns")
	return cmd
}

// runSimulation wires the manager to the configured stores and plays
// so.sessions sessions concurrently.
func runSimulation(ctx context.Context, cfg config.Config, so simOptions) ([]outcome, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	cat, err := loadCatalogue(cfg)
	if err != nil {
		return nil, err
	}

	mc := game.ManagerConfig{
		Rules:         cfg.HouseRules(),
		Themes:        cat,
		CustomEffects: deck.Effects(),
		Seed:          so.seed,
	}
	mc.Rules.MaxPlayers = so.players
	if cfg.RedisAddr != "" {
		rdb, err := cache.Connect(ctx, cfg.RedisAddr)
		if err != nil {
			return nil, err
		}
		defer rdb.Close()
		mc.Historian = cache.NewHistorian(rdb, 0)
	}
	if cfg.DatabaseURL != "" {
		pool, err := database.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		defer pool.Close()
		store := database.NewResultStore(pool)
		if err := store.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		mc.Results = store
	}
	m := game.NewManager(mc)
	defer m.Drain()

	secret := cfg.TokenSecret
	if secret == "" {
		log.Warn("TOWER_TOKEN_SECRET not set, using a throwaway secret")
		secret = uuid.NewString()
	}
	tokens, err := reconnect.NewIssuer([]byte(secret), cfg.ReconnectTTL, nil)
	if err != nil {
		return nil, err
	}
	coord := coordinator.New(m, tokens)

	outcomes := make([]outcome, so.sessions)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i := range so.sessions {
		g.Go(func() error {
			o, err := playSession(ctx, m, coord, cat.IDs(), so, i)
			if err != nil {
				return fmt.Errorf("session %d: %w", i, err)
			}
			outcomes[i] = o
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	m.Reap(0)
	return outcomes, nil
}

func playSession(ctx context.Context, m *game.Manager, coord *coordinator.Coordinator, themes []string, so simOptions, n int) (outcome, error) {
	sid, err := m.CreateSession(so.players, "")
	if err != nil {
		return outcome{}, err
	}
	defer coord.Forget(sid)

	names := make(map[uuid.UUID]string, so.players)
	conns := make(map[uuid.UUID]coordinator.ConnID, so.players)
	for p := range so.players {
		pid := uuid.New()
		names[pid] = fmt.Sprintf("bot-%d.%d", n, p)
		conns[pid] = coordinator.ConnID(names[pid])
		if _, err := coord.Join(conns[pid], sid, pid, names[pid], themes[(n+p)%len(themes)]); err != nil {
			return outcome{}, err
		}
		if err := m.SetReady(sid, pid, true); err != nil {
			return outcome{}, err
		}
	}
	if err := m.Start(sid); err != nil {
		return outcome{}, err
	}
	s, err := m.Session(sid)
	if err != nil {
		return outcome{}, err
	}
	defer s.Close()

	o := outcome{SessionID: sid}
	for turn := 1; s.Status() == game.StatusPlaying; turn++ {
		if err := ctx.Err(); err != nil {
			return outcome{}, err
		}
		if turn > so.maxTurns {
			log.WithFields(log.Fields{"session": sid, "turns": so.maxTurns}).Warn("session stalled, giving up")
			o.Stalled = true
			break
		}
		pid := s.CurrentPlayer()
		if pid == uuid.Nil {
			break
		}
		if so.churn > 0 && turn%so.churn == 0 {
			conn, err := churn(coord, conns[pid])
			if err != nil {
				return outcome{}, err
			}
			conns[pid] = conn
		}
		if err := takeTurn(s, pid); err != nil && !retryable(err) {
			return outcome{}, err
		}
	}

	ps := s.Snapshot(uuid.Nil)
	o.Winner = names[ps.WinnerID]
	o.Sinner = names[ps.SinnerID]
	o.Turns = ps.TurnNumber
	o.Purified = ps.PurificationCount
	return o, nil
}

// churn drops conn and resumes the seat on a new connection.
func churn(coord *coordinator.Coordinator, conn coordinator.ConnID) (coordinator.ConnID, error) {
	token, err := coord.Disconnect(conn)
	if err != nil {
		return "", err
	}
	next := conn + "'"
	if _, err := coord.Resume(next, token); err != nil {
		return "", err
	}
	return next, nil
}

// takeTurn plays the first card the tower accepts, flips the first
// face-down card, or picks the tower up.
func takeTurn(s *game.Session, pid uuid.UUID) error {
	ps := s.Snapshot(pid)
	var me *game.PlayerView
	for i := range ps.Players {
		if ps.Players[i].PlayerID == pid {
			me = &ps.Players[i]
		}
	}
	if me == nil {
		return engine.ErrPlayerNotFound
	}

	if me.Phase == engine.PhaseFaceDown.String() {
		_, err := s.Play(pid, 0, uuid.Nil)
		return err
	}
	playable, err := s.QueryPlayableCards(pid)
	if err != nil {
		return err
	}
	if len(playable) == 0 {
		_, err := s.TakePile(pid)
		return err
	}

	pool := me.Hand
	if me.Phase == engine.PhaseFaceUp.String() {
		pool = me.FaceUp
	}
	for i, c := range pool {
		if c.ID == playable[0].ID {
			_, err := s.Play(pid, i, uuid.Nil)
			return err
		}
	}
	return engine.ErrInvalidIndex
}

// retryable reports errors caused by the turn moving on underneath a bot,
// e.g. when the deadline fired between its snapshot and its play.
func retryable(err error) bool {
	return errors.Is(err, engine.ErrNotCurrentTurn) ||
		errors.Is(err, engine.ErrNotPlaying) ||
		errors.Is(err, engine.ErrNotPlayable) ||
		errors.Is(err, engine.ErrInvalidIndex) ||
		errors.Is(err, engine.ErrEmptyPile)
}

func printOutcomes(w io.Writer, outcomes []outcome) {
	stalled := 0
	for _, o := range outcomes {
		status := "finished"
		if o.Stalled {
			status = "stalled"
			stalled++
		}
		sinner := o.Sinner
		if sinner == "" {
			sinner = "-"
		}
		fmt.Fprintf(w, "%s  %-8s  winner=%-10s sinner=%-10s turns=%-5d purified=%d\n",
			o.SessionID, status, o.Winner, sinner, o.Turns, o.Purified)
	}
	fmt.Fprintf(w, "%d sessions, %d stalled\n", len(outcomes), stalled)
}
