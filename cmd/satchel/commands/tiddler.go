package commands

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/satchelhq/satchel/errors"
	"github.com/satchelhq/satchel/model"
)

// timestampFormat is the compact UTC form tiddler modified/created
// times are recorded in.
const timestampFormat = "20060102150405"

// TiddlerCmd groups the tiddler subcommands
var TiddlerCmd = &cobra.Command{
	Use:   "tiddler",
	Short: "Manage tiddlers",
	Long: `Manage tiddlers: versioned documents addressed by (bag, title).
Every put appends an immutable revision; nothing is overwritten.

Examples:
  satchel tiddler put drafts notes --text "remember the milk" --tag todo
  satchel tiddler get drafts notes
  satchel tiddler get drafts notes --revision 12
  satchel tiddler revisions drafts notes
  satchel tiddler rm drafts notes`,
}

var tiddlerRevisionFlag int64

var tiddlerGetCmd = &cobra.Command{
	Use:   "get <bag> <title>",
	Short: "Show a tiddler",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, client, err := openStore()
		if err != nil {
			return err
		}
		defer client.Close()

		var t *model.Tiddler
		if tiddlerRevisionFlag > 0 {
			t, err = s.GetTiddlerRevision(cmd.Context(), args[0], args[1], tiddlerRevisionFlag)
		} else {
			t, err = s.GetTiddler(cmd.Context(), args[0], args[1])
		}
		if err != nil {
			return err
		}
		return render(t)
	},
}

var (
	tiddlerTextFlag     string
	tiddlerFileFlag     string
	tiddlerTypeFlag     string
	tiddlerTagsFlag     []string
	tiddlerFieldsFlag   []string
	tiddlerModifierFlag string
)

var tiddlerPutCmd = &cobra.Command{
	Use:   "put <bag> <title>",
	Short: "Append a new revision of a tiddler",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		text := tiddlerTextFlag
		if tiddlerFileFlag != "" {
			raw, err := os.ReadFile(tiddlerFileFlag)
			if err != nil {
				return errors.Wrapf(err, "failed to read %s", tiddlerFileFlag)
			}
			text = string(raw)
		}

		t := model.NewTiddler(args[1], args[0])
		t.Text = text
		t.Type = tiddlerTypeFlag
		t.Tags = tiddlerTagsFlag
		t.Modifier = tiddlerModifierFlag
		t.Modified = time.Now().UTC().Format(timestampFormat)
		for _, raw := range tiddlerFieldsFlag {
			k, v, found := strings.Cut(raw, "=")
			if !found {
				return errors.Newf("field %q must be of the form key=value", raw)
			}
			t.Fields[k] = v
		}

		s, client, err := openStore()
		if err != nil {
			return err
		}
		defer client.Close()

		return s.PutTiddler(cmd.Context(), t)
	},
}

var tiddlerRmCmd = &cobra.Command{
	Use:   "rm <bag> <title>",
	Short: "Delete a tiddler and its entire revision history",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, client, err := openStore()
		if err != nil {
			return err
		}
		defer client.Close()

		return s.DeleteTiddler(cmd.Context(), args[0], args[1])
	},
}

var tiddlerRevisionsCmd = &cobra.Command{
	Use:   "revisions <bag> <title>",
	Short: "List a tiddler's revision ids, newest first",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, client, err := openStore()
		if err != nil {
			return err
		}
		defer client.Close()

		revisions, err := s.ListTiddlerRevisions(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		for _, rvid := range revisions {
			fmt.Println(rvid)
		}
		return nil
	},
}

func init() {
	tiddlerGetCmd.Flags().Int64Var(&tiddlerRevisionFlag, "revision", 0, "Load a specific revision id instead of the newest")

	tiddlerPutCmd.Flags().StringVar(&tiddlerTextFlag, "text", "", "Tiddler text")
	tiddlerPutCmd.Flags().StringVar(&tiddlerFileFlag, "file", "", "Read tiddler text from a file (overrides --text)")
	tiddlerPutCmd.Flags().StringVar(&tiddlerTypeFlag, "type", "", "Content type; non-text/ types are stored as binary")
	tiddlerPutCmd.Flags().StringSliceVar(&tiddlerTagsFlag, "tag", nil, "Tag (repeatable)")
	tiddlerPutCmd.Flags().StringArrayVar(&tiddlerFieldsFlag, "field", nil, "Extended field as key=value (repeatable)")
	tiddlerPutCmd.Flags().StringVar(&tiddlerModifierFlag, "modifier", "", "Usersign recorded as the revision's modifier")

	TiddlerCmd.AddCommand(tiddlerGetCmd)
	TiddlerCmd.AddCommand(tiddlerPutCmd)
	TiddlerCmd.AddCommand(tiddlerRmCmd)
	TiddlerCmd.AddCommand(tiddlerRevisionsCmd)
}
