package bot

import (
	"context"

	"github.com/babushkian/OTBot/catalog"
	"github.com/babushkian/OTBot/command"
	"github.com/babushkian/OTBot/db"
	"github.com/babushkian/OTBot/handler"
	"github.com/babushkian/OTBot/handler/violation"
	"github.com/babushkian/OTBot/media"
	"github.com/babushkian/OTBot/messaging"
	"github.com/babushkian/OTBot/model"
	"github.com/babushkian/OTBot/notify"
	"github.com/babushkian/OTBot/photo"
	"github.com/babushkian/OTBot/report"
	"github.com/babushkian/OTBot/review"
	"github.com/babushkian/OTBot/server"
	"github.com/babushkian/OTBot/state"
	"github.com/babushkian/OTBot/utils"
	"github.com/babushkian/OTBot/workflow"
	"github.com/bwmarrin/discordgo"
	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog/log"
)

var dg *discordgo.Session

// Start 启动机器人，直到 ctx 结束
func Start(ctx context.Context, cfg *model.Config) error {
	if cfg.Token == "" {
		return errors.New("token is empty")
	}

	conn, err := db.Open(cfg.Storage.DBPath)
	if err != nil {
		return err
	}
	defer conn.Close()

	submissions := db.NewSubmissionRepository(conn)
	locations := db.NewLocationRepository(conn)
	users := db.NewUserRepository(conn)
	if err := SeedLocations(ctx, locations, cfg.Locations); err != nil {
		return err
	}

	cat, err := catalog.Load(cfg.Intake.CatalogFile)
	if err != nil {
		return err
	}
	store, err := state.New(ctx, cfg.State, conn)
	if err != nil {
		return err
	}
	publisher, closePublisher, err := messaging.New(cfg.RabbitMQ.URL)
	if err != nil {
		return errors.Wrap(err, "connect to rabbitmq")
	}
	defer closePublisher()

	// 使用提供的机器人令牌创建一个新的 Discord 会话
	dg, err = discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return errors.Wrap(err, "create discord session")
	}

	photos := photo.NewStore(cfg.Storage.DataDir, db.NewPhotoRepository(conn))
	policy := utils.NewPolicy(cfg.Admins, cfg.Reporters, users)
	renderer := report.NewRenderer(photos, cfg.Layout.TargetRatio)
	notifier := notify.NewDiscord(dg)

	intake := workflow.NewEngine(workflow.Deps{
		Store:             store,
		Submissions:       submissions,
		Photos:            photos,
		Locations:         locations,
		Catalog:           cat,
		Auth:              policy,
		Notifier:          notifier,
		Publisher:         publisher,
		AllowEmptyActions: cfg.Intake.AllowEmptyActions,
	})
	reviews := review.NewEngine(review.Deps{
		Store:             store,
		Submissions:       submissions,
		Renderer:          renderer,
		Photos:            photos,
		Auth:              policy,
		Notifier:          notifier,
		Publisher:         publisher,
		AudienceChannelID: cfg.Review.AudienceChannelID,
	})

	h := violation.New(ctx, dg, violation.Deps{
		Intake:      intake,
		Review:      reviews,
		Submissions: submissions,
		Locations:   locations,
		Users:       users,
		Renderer:    renderer,
		Auth:        policy,
		MaxPhotos:   cfg.Intake.MaxPhotos,
	})
	agg := media.NewAggregator(ctx, media.Options{
		QuietPeriod: cfg.Intake.QuietPeriod,
		MaxPhotos:   cfg.Intake.MaxPhotos,
		Forward:     h.OnBatch,
		Overflow:    h.OnOverflow,
	})
	intake.SetMedia(agg)
	h.SetMedia(agg)
	h.RegisterHandlers()

	registerEventHandlers(dg)

	if err := dg.Open(); err != nil {
		return errors.Wrap(err, "open discord connection")
	}
	closeSession := func() {
		if dg == nil {
			return
		}
		if err := dg.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close discord session")
		}
		dg = nil
	}
	defer closeSession()

	if err := registerCommands(dg, cfg.GuildIDs); err != nil {
		return err
	}

	httpDone := make(chan error, 1)
	if cfg.HTTP.Addr != "" {
		api := server.NewSubmissionHandler(submissions, locations, renderer, cfg.Layout.TargetRatio)
		go func() {
			httpDone <- server.Run(ctx, cfg.HTTP.Addr, api)
			close(httpDone)
		}()
	} else {
		close(httpDone)
	}

	log.Info().Msg("Bot is now running. Press CTRL-C to exit.")
	select {
	case <-ctx.Done():
	case err := <-httpDone:
		if err != nil {
			return err
		}
		<-ctx.Done()
	}

	// stop receiving events before the aggregator is closed
	closeSession()
	handler.Drain()
	agg.Close()
	<-httpDone
	log.Info().Msg("bot stopped")
	return nil
}

// registerCommands registers the slash commands in every configured guild, or
// globally when none is configured.
func registerCommands(s *discordgo.Session, guildIDs []string) error {
	if len(guildIDs) == 0 {
		guildIDs = []string{""}
	}
	for _, guildID := range guildIDs {
		for _, cmd := range command.AllCommands {
			if _, err := s.ApplicationCommandCreate(s.State.User.ID, guildID, cmd); err != nil {
				return errors.Wrapf(err, "cannot create %q command", cmd.Name)
			}
		}
		log.Info().Str("guild", guildID).Int("commands", len(command.AllCommands)).Msg("commands registered")
	}
	return nil
}

// LocationUpserter stores locations.
type LocationUpserter interface {
	Upsert(ctx context.Context, loc model.Location) (int64, error)
}

// SeedLocations stores the locations listed in the configuration. Existing ones keep
// their id and get the configured description.
func SeedLocations(ctx context.Context, repo LocationUpserter, locs []model.Location) error {
	for _, loc := range locs {
		if _, err := repo.Upsert(ctx, loc); err != nil {
			return errors.Wrapf(err, "seed location %q", loc.Name)
		}
	}
	if len(locs) > 0 {
		log.Info().Int("locations", len(locs)).Msg("locations seeded from config")
	}
	return nil
}

// GetSession 返回当前的 Discord 会话
func GetSession() *discordgo.Session {
	return dg
}
