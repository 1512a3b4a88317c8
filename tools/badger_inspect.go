package main

import (
	pb "chat-core/proto/storage"
	"flag"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
	"github.com/kelseyhightower/envconfig"
	"github.com/mama165/sdk-go/database"
	"github.com/olekukonko/tablewriter"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
)

type inspectConfig struct {
	BadgerFilepath string `envconfig:"BADGER_FILEPATH"`
	// INSPECT_COLOURS highlights the key families in the output
	Colours bool `envconfig:"INSPECT_COLOURS" default:"true"`
	MaxValue int `envconfig:"INSPECT_MAX_VALUE" default:"60"`
}

var families = map[string]color.Style{
	"conv":     color.New(color.FgCyan, color.OpBold),
	"member":   color.New(color.FgCyan),
	"msg":      color.New(color.FgGreen, color.OpBold),
	"child":    color.New(color.FgGreen),
	"convmsg":  color.New(color.FgGreen),
	"sent":     color.New(color.FgGreen),
	"recv":     color.New(color.FgGreen),
	"activity": color.New(color.FgGreen),
	"edit":     color.New(color.FgYellow, color.OpBold),
	"notif":    color.New(color.FgMagenta, color.OpBold),
	"inbox":    color.New(color.FgMagenta),
	"outbox":   color.New(color.FgRed, color.OpBold),
	"profile":  color.New(color.FgBlue, color.OpBold),
}

func main() {
	var cfg inspectConfig
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatal("Invalid configuration: ", err)
	}
	if cfg.BadgerFilepath == "" {
		cfg.BadgerFilepath = database.DefaultPath
	}
	dbPath := flag.String("db", cfg.BadgerFilepath, "Path to badger DB")
	prefix := flag.String("prefix", "", "Prefix to scan, e.g. msg: or outbox:")
	summary := flag.Bool("summary", false, "Only count keys per family")
	flag.Parse()

	db, err := openDB(*dbPath)
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	table := tablewriter.NewWriter(os.Stdout)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")

	counts := map[string]int{}
	if *summary {
		table.SetHeader([]string{"Family", "Keys"})
	} else {
		table.SetHeader([]string{"Family", "Key", "Value"})
	}

	err = db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		p := []byte(*prefix)
		for it.Seek(p); it.ValidForPrefix(p); it.Next() {
			item := it.Item()
			key := string(item.Key())
			family, _, _ := strings.Cut(key, ":")
			counts[family]++
			if *summary {
				continue
			}
			err := item.Value(func(v []byte) error {
				table.Append([]string{paint(cfg.Colours, family), key, describe(family, v, cfg.MaxValue)})
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Fatal(err)
	}

	if *summary {
		names := make([]string, 0, len(counts))
		for name := range counts {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			table.Append([]string{paint(cfg.Colours, name), fmt.Sprint(counts[name])})
		}
	}
	table.Render()
}

func paint(enabled bool, family string) string {
	style, ok := families[family]
	if !enabled || !ok {
		return family
	}
	return style.Render(family)
}

// entities maps the families holding a protobuf value to its message type.
// Index families carry no value or a bare id.
var entities = map[string]func() proto.Message{
	"conv":    func() proto.Message { return &pb.Conversation{} },
	"msg":     func() proto.Message { return &pb.Message{} },
	"edit":    func() proto.Message { return &pb.EditRecord{} },
	"notif":   func() proto.Message { return &pb.Notification{} },
	"outbox":  func() proto.Message { return &pb.OutboxEvent{} },
	"profile": func() proto.Message { return &pb.Profile{} },
}

// describe renders a value on one line.
func describe(family string, v []byte, max int) string {
	if len(v) == 0 {
		return "-"
	}
	newMessage, ok := entities[family]
	if !ok {
		return truncate(string(v), max)
	}
	m := newMessage()
	if err := proto.Unmarshal(v, m); err != nil {
		return fmt.Sprintf("unreadable: %v", err)
	}
	text, err := protojson.Marshal(m)
	if err != nil {
		return fmt.Sprintf("unreadable: %v", err)
	}
	return truncate(string(text), max)
}

func truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	return s[:max] + "..."
}

func openDB(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path).
		WithReadOnly(true).
		WithLogger(nil).
		WithBypassLockGuard(true)
	return badger.Open(opts)
}
