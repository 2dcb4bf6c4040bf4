// Package main provides the appletview CLI, a developer tool for working
// with web applet sessions outside a running emulator: decoding argument
// buffers, driving an offline extraction against the configured content
// directories, and inspecting extraction manifests.
package main

import (
	"encoding/binary"
	"fmt"
	"os"
	"strconv"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap/zapcore"

	"github.com/crescent-emu/crescent/internal/applet"
	"github.com/crescent-emu/crescent/internal/applet/webbrowser"
	"github.com/crescent-emu/crescent/internal/content"
	"github.com/crescent-emu/crescent/internal/settings"
	"github.com/crescent-emu/crescent/pkg/log"
	"github.com/crescent-emu/crescent/pkg/utils"
)

func main() {
	app := &cli.App{
		Name:  "appletview",
		Usage: "inspect and drive web applet sessions",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: "path to the settings file",
				Value: "crescent.yaml",
			},
			&cli.StringFlag{
				Name:  "data-dir",
				Usage: "base directory for default cache/content paths",
				Value: ".",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "enable debug logging",
			},
		},
		Commands: []*cli.Command{
			dumpCommand(),
			extractCommand(),
			manifestCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newLogger(c *cli.Context) log.Logger {
	level := zapcore.InfoLevel
	if c.Bool("verbose") {
		level = zapcore.DebugLevel
	}
	return log.NewWithWriter(os.Stderr, level)
}

func loadSettings(c *cli.Context) (settings.Settings, error) {
	return settings.Load(c.String("config"), c.String("data-dir"))
}

func dumpCommand() *cli.Command {
	return &cli.Command{
		Name:      "dump",
		Usage:     "decode a web argument buffer file and print its fields",
		ArgsUsage: "<file>",
		Action:    dumpAction,
	}
}

func dumpAction(c *cli.Context) error {
	if c.NArg() < 1 {
		return cli.Exit("file required", 1)
	}

	buf, err := utils.LoadFile(c.Args().First())
	if err != nil {
		return err
	}
	if len(buf) < webbrowser.WebArgHeaderSize {
		return cli.Exit(fmt.Sprintf("buffer of %d bytes is smaller than the %d byte header", len(buf), webbrowser.WebArgHeaderSize), 1)
	}

	header, args := webbrowser.ReadArgs(buf)
	fmt.Printf("total_entries: %d\nshim_kind:     %s\n", header.TotalEntries, header.ShimKind)
	for tag, data := range args {
		fmt.Printf("tag %#04x       %d bytes: %s\n", uint32(tag), len(data), previewPayload(data))
	}
	return nil
}

// previewPayload renders a payload for display: printable text as a quoted
// string, small fixed-width values as hex, anything else as a byte count.
func previewPayload(data []byte) string {
	printable := len(data) > 0
	for _, b := range data {
		if b != 0 && (b < 0x20 || b > 0x7E) {
			printable = false
			break
		}
	}

	switch {
	case printable:
		return strconv.Quote(stringPreview(data))
	case len(data) == 4:
		return fmt.Sprintf("%#x", binary.LittleEndian.Uint32(data))
	case len(data) == 8:
		return fmt.Sprintf("%#x", binary.LittleEndian.Uint64(data))
	default:
		return "(binary)"
	}
}

func stringPreview(data []byte) string {
	for i, b := range data {
		if b == 0 {
			return string(data[:i])
		}
	}
	return string(data)
}

func extractCommand() *cli.Command {
	return &cli.Command{
		Name:  "extract",
		Usage: "run an offline web session against the configured content, materializing its cache",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "title-id",
				Usage:    "owning title ID, hex",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "kind",
				Usage: "document kind: manual, legal or data",
				Value: "manual",
			},
			&cli.StringFlag{
				Name:  "doc-path",
				Usage: "document path within the archive",
				Value: "index.html",
			},
		},
		Action: extractAction,
	}
}

func extractAction(c *cli.Context) error {
	logger := newLogger(c)

	cfg, err := loadSettings(c)
	if err != nil {
		return err
	}

	titleID, err := strconv.ParseUint(c.String("title-id"), 16, 64)
	if err != nil {
		return fmt.Errorf("invalid title-id: %w", err)
	}

	registry, err := content.NewRegistry(cfg.ContentDir, logger)
	if err != nil {
		return err
	}
	system, err := content.NewSystemRegistry(cfg.SystemContentDir, logger)
	if err != nil {
		return err
	}
	patcher := content.NewPatchManager(cfg.ModsDir, logger)

	webArg, err := buildSessionArgs(c.String("kind"), c.String("doc-path"), titleID)
	if err != nil {
		return err
	}

	broker := applet.NewDataBroker()
	broker.PushNormalDataToApplet(applet.CommonArguments{
		ArgumentsVersion: 3,
		Size:             applet.CommonArgumentsSize,
	}.Encode())
	broker.PushNormalDataToApplet(webArg)

	session := webbrowser.New(broker, webbrowser.DefaultFrontend{Logger: logger},
		webbrowser.WithLogger(logger),
		webbrowser.WithCacheDir(cfg.CacheDir),
		webbrowser.WithCurrentTitle(titleID),
		webbrowser.WithContent(registry, system, patcher),
	)

	if err := session.Initialize(); err != nil {
		return err
	}
	if err := session.Execute(); err != nil {
		return err
	}

	<-broker.StateChanged()
	data, ok := broker.PopNormalDataFromApplet()
	if !ok {
		return fmt.Errorf("session completed without a return value")
	}
	rv, ok := webbrowser.DecodeReturnValue(data)
	if !ok {
		return fmt.Errorf("malformed return value of %d bytes", len(data))
	}

	fmt.Printf("exit_reason: %d\nlast_url:    %s\n", rv.ExitReason, rv.LastURL)
	return nil
}

// buildSessionArgs assembles the web argument buffer an offline session
// expects, the way a guest application would.
func buildSessionArgs(kind, docPath string, titleID uint64) ([]byte, error) {
	var docKind webbrowser.DocumentKind
	var idTag webbrowser.ArgTag
	switch kind {
	case "manual":
		docKind = webbrowser.DocumentKindOfflineHtmlPage
	case "legal":
		docKind = webbrowser.DocumentKindApplicationLegalInformation
		idTag = webbrowser.ArgTagApplicationID
	case "data":
		docKind = webbrowser.DocumentKindSystemDataPage
		idTag = webbrowser.ArgTagSystemDataID
	default:
		return nil, fmt.Errorf("unknown document kind %q", kind)
	}

	entries := []webbrowser.RawArg{
		{Tag: webbrowser.ArgTagDocumentKind, Data: uint32Payload(uint32(docKind))},
		{Tag: webbrowser.ArgTagDocumentPath, Data: append([]byte(docPath), 0)},
	}
	if idTag != 0 {
		entries = append(entries, webbrowser.RawArg{Tag: idTag, Data: uint64Payload(titleID)})
	}

	return webbrowser.BuildArgs(webbrowser.ShimKindOffline, entries...), nil
}

func uint32Payload(v uint32) []byte {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, v)
	return buf
}

func uint64Payload(v uint64) []byte {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, v)
	return buf
}

func manifestCommand() *cli.Command {
	return &cli.Command{
		Name:      "manifest",
		Usage:     "print the extraction manifest of a cache root",
		ArgsUsage: "<cache-root>",
		Action:    manifestAction,
	}
}

func manifestAction(c *cli.Context) error {
	if c.NArg() < 1 {
		return cli.Exit("cache-root required", 1)
	}

	m, err := content.ReadManifest(c.Args().First())
	if err != nil {
		return err
	}

	fmt.Printf("title_id:     %016X\nkind:         %s\nfile_count:   %d\nfingerprint:  %#016x\nextracted_at: %s\n",
		m.TitleID, m.Kind, m.FileCount, m.Fingerprint, m.ExtractedAt.Format("2006-01-02 15:04:05 MST"))
	return nil
}
