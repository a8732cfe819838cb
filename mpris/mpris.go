//go:build linux

package mpris

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"strings"
	"sync"

	"github.com/godbus/dbus/v5"

	"github.com/marcus-crane/mediabridge/media"
)

type backend struct {
	opts Options
	art  *ArtLoader
}

// New returns the MPRIS backend, which follows media players over the
// D-Bus session bus.
func New(opts Options) media.Backend {
	opts = opts.withDefaults()
	return &backend{
		opts: opts,
		art:  NewArtLoader(opts.ArtTimeout, opts.ArtCacheSize),
	}
}

func (b *backend) Name() string {
	return "mpris"
}

// Open connects a private session bus connection so closing the session
// tears down its signal delivery without touching the shared connection.
func (b *backend) Open() (media.Session, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to session bus: %w", err)
	}

	rules := [][]dbus.MatchOption{
		{
			dbus.WithMatchObjectPath(objectPath),
			dbus.WithMatchInterface("org.freedesktop.DBus.Properties"),
			dbus.WithMatchMember("PropertiesChanged"),
		},
		{
			dbus.WithMatchObjectPath(objectPath),
			dbus.WithMatchInterface(playerIface),
			dbus.WithMatchMember("Seeked"),
		},
		{
			dbus.WithMatchSender("org.freedesktop.DBus"),
			dbus.WithMatchInterface("org.freedesktop.DBus"),
			dbus.WithMatchMember("NameOwnerChanged"),
		},
	}
	for _, rule := range rules {
		if err := conn.AddMatchSignal(rule...); err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to add match rule: %w", err)
		}
	}

	signals := make(chan *dbus.Signal, 16)
	conn.Signal(signals)

	return newSession(busReader{conn: conn}, signals, conn.Close, b.art, b.opts.PreferredPlayer,
		b.opts.Logger.With(slog.String("backend", "mpris"))), nil
}

// Send issues a transport command to the active player over the shared
// session bus connection.
func (b *backend) Send(cmd media.Command) error {
	method, err := methodFor(cmd)
	if err != nil {
		return err
	}
	conn, err := dbus.SessionBus()
	if err != nil {
		return fmt.Errorf("failed to connect to session bus: %w", err)
	}
	player, err := busReader{conn: conn}.ActivePlayer(b.opts.PreferredPlayer)
	if err != nil {
		return err
	}
	if player == "" {
		return ErrNoPlayer
	}
	return conn.Object(player, objectPath).Call(method, 0).Err
}

// playerReader is how a session reaches the players on the bus.
type playerReader interface {
	ActivePlayer(preferred string) (string, error)
	State(busName string) playerState
}

type session struct {
	reader    playerReader
	signals   <-chan *dbus.Signal
	closer    func() error
	art       *ArtLoader
	preferred string
	logger    *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	subscribe sync.Once
	close     sync.Once
	wg        sync.WaitGroup
}

func newSession(reader playerReader, signals <-chan *dbus.Signal, closer func() error, art *ArtLoader, preferred string, logger *slog.Logger) *session {
	ctx, cancel := context.WithCancel(context.Background())
	return &session{
		reader:    reader,
		signals:   signals,
		closer:    closer,
		art:       art,
		preferred: preferred,
		logger:    logger,
		ctx:       ctx,
		cancel:    cancel,
	}
}

func (s *session) Subscribe(cb media.Callback) {
	s.subscribe.Do(func() {
		s.wg.Add(1)
		go s.deliver(cb)
	})
}

// Close stops delivery and waits for any callback in flight to return.
func (s *session) Close() error {
	var err error
	s.close.Do(func() {
		s.cancel()
		err = s.closer()
		// Stop a Subscribe racing with Close from starting a new delivery.
		s.subscribe.Do(func() {})
		s.wg.Wait()
	})
	return err
}

func (s *session) deliver(cb media.Callback) {
	defer s.wg.Done()

	// Report whatever is already playing before the first change arrives.
	s.refresh(cb)
	for {
		select {
		case <-s.ctx.Done():
			return
		case sig, ok := <-s.signals:
			if !ok {
				return
			}
			if relevant(sig) {
				s.refresh(cb)
			}
		}
	}
}

func relevant(sig *dbus.Signal) bool {
	if sig == nil {
		return false
	}
	switch sig.Name {
	case "org.freedesktop.DBus.NameOwnerChanged":
		if len(sig.Body) == 0 {
			return false
		}
		name, _ := sig.Body[0].(string)
		return strings.HasPrefix(name, busPrefix)
	case "org.freedesktop.DBus.Properties.PropertiesChanged":
		if len(sig.Body) == 0 {
			return false
		}
		iface, _ := sig.Body[0].(string)
		return iface == playerIface
	case playerIface + ".Seeked":
		return true
	}
	return false
}

func (s *session) refresh(cb media.Callback) {
	player, err := s.reader.ActivePlayer(s.preferred)
	if err != nil {
		s.logger.Debug("failed to list players", slog.String("error", err.Error()))
		return
	}

	var info *media.RawInfo
	if player != "" {
		state := s.reader.State(player)
		info = state.rawInfo()
		art := state.artwork()
		info.AlbumCover = s.loadCover(art.cover)
		info.AppIcon = s.loadIcon(art.icon)
	}

	if s.ctx.Err() != nil {
		return
	}
	cb(info)
}

func (s *session) loadCover(artURL string) image.Image {
	if artURL == "" {
		return nil
	}
	img, err := s.art.Load(s.ctx, artURL)
	if err != nil {
		s.logger.Debug("failed to load album cover", slog.String("error", err.Error()))
		return nil
	}
	return img
}

func (s *session) loadIcon(desktopEntry string) image.Image {
	if desktopEntry == "" {
		return nil
	}
	path, err := iconPath(desktopEntry)
	if err != nil {
		s.logger.Debug("no app icon", slog.String("entry", desktopEntry), slog.String("error", err.Error()))
		return nil
	}
	img, err := s.art.Load(s.ctx, path)
	if err != nil {
		s.logger.Debug("failed to load app icon", slog.String("error", err.Error()))
		return nil
	}
	return img
}

// busReader reads players straight off a session bus connection.
type busReader struct {
	conn *dbus.Conn
}

func (r busReader) ActivePlayer(preferred string) (string, error) {
	var names []string
	if err := r.conn.BusObject().Call("org.freedesktop.DBus.ListNames", 0).Store(&names); err != nil {
		return "", err
	}
	return selectPlayer(names, preferred, func(busName string) string {
		v, err := r.conn.Object(busName, objectPath).GetProperty(playerIface + ".PlaybackStatus")
		if err != nil {
			return ""
		}
		status, _ := v.Value().(string)
		return status
	}), nil
}

func (r busReader) State(busName string) playerState {
	obj := r.conn.Object(busName, objectPath)
	state := playerState{BusName: busName}

	if v, err := obj.GetProperty(playerIface + ".PlaybackStatus"); err == nil {
		state.Status, _ = v.Value().(string)
	}
	if v, err := obj.GetProperty(playerIface + ".Metadata"); err == nil {
		state.Metadata, _ = v.Value().(map[string]dbus.Variant)
	}
	if v, err := obj.GetProperty(playerIface + ".Position"); err == nil {
		if pos, ok := toInt64(v.Value()); ok {
			state.Position = &pos
		}
	}
	if v, err := obj.GetProperty(rootIface + ".Identity"); err == nil {
		state.Identity, _ = v.Value().(string)
	}
	if v, err := obj.GetProperty(rootIface + ".DesktopEntry"); err == nil {
		state.DesktopEntry, _ = v.Value().(string)
	}
	return state
}
