package emit

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/agenthands/docket/internal/core/model"
)

const singletonsFolder = "singletons"

type OrganizeOptions struct {
	Move           bool
	DryRun         bool
	TargetRoot     string
	SingletonsOnly bool
}

type Action struct {
	Op  string `json:"op"`
	Src string `json:"src"`
	Dst string `json:"dst"`
}

type Organizer struct {
	Options OrganizeOptions
	Logger  zerolog.Logger
}

func NewOrganizer(opts OrganizeOptions, logger zerolog.Logger) *Organizer {
	return &Organizer{Options: opts, Logger: logger}
}

// Organize places group members into <target>/<kind>_group_<n>/ and
// singletons into <target>/singletons/. Missing files are skipped.
func (o *Organizer) Organize(res model.ClusterResult) ([]Action, error) {
	var actions []Action

	if !o.Options.SingletonsOnly {
		for n, g := range res.Groups {
			folder := filepath.Join(o.Options.TargetRoot, fmt.Sprintf("%s_group_%d", g.Kind, n+1))
			for _, m := range g.Members {
				a, err := o.place(res.Records[m], folder)
				if err != nil {
					return actions, err
				}
				if a != nil {
					actions = append(actions, *a)
				}
			}
		}
	}

	folder := filepath.Join(o.Options.TargetRoot, singletonsFolder)
	for _, s := range res.Singletons {
		a, err := o.place(res.Records[s], folder)
		if err != nil {
			return actions, err
		}
		if a != nil {
			actions = append(actions, *a)
		}
	}

	o.Logger.Info().Int("actions", len(actions)).Bool("dry_run", o.Options.DryRun).Msg("organized files")
	return actions, nil
}

func (o *Organizer) place(rec model.DocumentRecord, folder string) (*Action, error) {
	if !rec.Available {
		o.Logger.Warn().Str("path", rec.Path).Msg("skipping missing file")
		return nil, nil
	}

	op := "copy"
	if o.Options.Move {
		op = "move"
	}
	a := &Action{Op: op, Src: rec.Path, Dst: uniquePath(filepath.Join(folder, rec.Name))}

	if o.Options.DryRun {
		o.Logger.Info().Str("op", op).Str("src", a.Src).Str("dst", a.Dst).Msg("dry run")
		return a, nil
	}

	if err := os.MkdirAll(folder, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", folder, err)
	}
	var err error
	if o.Options.Move {
		err = moveFile(a.Src, a.Dst)
	} else {
		err = copyFile(a.Src, a.Dst)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to %s %s: %w", op, a.Src, err)
	}
	o.Logger.Debug().Str("op", op).Str("src", a.Src).Str("dst", a.Dst).Msg("placed file")
	return a, nil
}

// uniquePath appends _1, _2, ... before the extension while path exists.
func uniquePath(path string) string {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return path
	}
	ext := filepath.Ext(path)
	base := strings.TrimSuffix(path, ext)
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s_%d%s", base, i, ext)
		if _, err := os.Stat(candidate); errors.Is(err, os.ErrNotExist) {
			return candidate
		}
	}
}

func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	// cross-device: copy then remove
	if err := copyFile(src, dst); err != nil {
		return err
	}
	return os.Remove(src)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
