// Package launchopts reads the per-user launch options the client stores for
// each application and checks them for shell syntax problems.
package launchopts

import (
	"context"
	"errors"
	"math/big"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/hadron-dev/hadron/internal/clientfs"
	"github.com/hadron-dev/hadron/internal/ctxlog"
	"github.com/hadron-dev/hadron/internal/steamerr"
	"github.com/hadron-dev/hadron/internal/vdf"
)

// CommandPlaceholder stands for the underlying launch command inside a
// launch-options string.
const CommandPlaceholder = "%command%"

const (
	UserDataDir     = "userdata"
	LocalConfigFile = "localconfig.vdf"
)

var appsPath = []string{"UserLocalConfigStore", "Software", "Valve", "Steam", "apps"}

// UserDir is the per-user data directory.
func UserDir(clientRoot, userID string) string {
	return clientfs.Join(clientRoot, UserDataDir, userID)
}

// LocalConfigPath is the per-user configuration file holding launch options.
func LocalConfigPath(clientRoot, userID string) string {
	return clientfs.Join(UserDir(clientRoot, userID), "config", LocalConfigFile)
}

// Resolve returns the launch options for appID. With a userID only that
// user's tree is read; without one every user tree is considered and the most
// recently written one holding options for the app wins, ties going to the
// numerically largest user id. ok is false when no options are set.
func Resolve(ctx context.Context, fsys clientfs.FS, clientRoot, userID, appID string) (opts string, ok bool, err error) {
	logger := ctxlog.FromContext(ctx)
	appID = strings.TrimSpace(appID)
	userID = strings.TrimSpace(userID)

	if userID != "" {
		if !fsys.IsDir(UserDir(clientRoot, userID)) {
			return "", false, &steamerr.UnknownUserError{UserID: userID}
		}
		opts, ok, err = readOptions(fsys, LocalConfigPath(clientRoot, userID), appID)
		if err != nil {
			return "", false, err
		}
		logger.Debug("Read launch options for user.", "user_id", userID, "app_id", appID, "found", ok)
		return opts, ok, nil
	}

	type candidate struct {
		user    string
		modTime time.Time
		opts    string
	}
	var candidates []candidate

	configs, err := fsys.Glob(clientfs.Join(clientRoot, UserDataDir), "*/config/"+LocalConfigFile)
	if err != nil {
		return "", false, err
	}
	for _, configPath := range configs {
		user := path.Base(path.Dir(path.Dir(configPath)))
		if !isNumeric(user) {
			continue
		}
		found, has, err := readOptions(fsys, configPath, appID)
		if err != nil {
			return "", false, err
		}
		if !has {
			continue
		}
		info, err := fsys.Stat(configPath)
		if err != nil {
			return "", false, err
		}
		candidates = append(candidates, candidate{user: user, modTime: info.ModTime(), opts: found})
	}

	if len(candidates) == 0 {
		logger.Debug("No user has launch options for app.", "app_id", appID, "users_checked", len(configs))
		return "", false, nil
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if !candidates[i].modTime.Equal(candidates[j].modTime) {
			return candidates[i].modTime.After(candidates[j].modTime)
		}
		return compareNumeric(candidates[i].user, candidates[j].user) > 0
	})

	chosen := candidates[0]
	logger.Debug("Selected launch options by recency.", "user_id", chosen.user, "app_id", appID, "candidates", len(candidates))
	return chosen.opts, true, nil
}

// Users lists the numeric user ids under userdata/, smallest first.
func Users(fsys clientfs.FS, clientRoot string) ([]string, error) {
	entries, err := fsys.ReadDir(clientfs.Join(clientRoot, UserDataDir))
	if err != nil {
		if errors.Is(err, steamerr.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	var users []string
	for _, entry := range entries {
		if entry.IsDir() && isNumeric(entry.Name()) {
			users = append(users, entry.Name())
		}
	}
	sort.Slice(users, func(i, j int) bool {
		return compareNumeric(users[i], users[j]) < 0
	})
	return users, nil
}

// AppOptions returns every app id with non-empty launch options in one
// user's tree, in file order.
func AppOptions(fsys clientfs.FS, clientRoot, userID string) ([]Entry, error) {
	doc, err := vdf.ParseFile(fsys, LocalConfigPath(clientRoot, userID))
	if err != nil {
		if errors.Is(err, steamerr.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	var out []Entry
	for _, e := range doc.Lookup(appsPath...).Entries() {
		opts, ok := e.Value.LeafAt("LaunchOptions")
		if !ok || strings.TrimSpace(opts) == "" {
			continue
		}
		out = append(out, Entry{UserID: userID, AppID: e.Key, Options: opts})
	}
	return out, nil
}

// Entry is one (user, app) launch-options pair.
type Entry struct {
	UserID  string `json:"user_id"`
	AppID   string `json:"app_id"`
	Options string `json:"options"`
}

func readOptions(fsys clientfs.FS, configPath, appID string) (string, bool, error) {
	doc, err := vdf.ParseFile(fsys, configPath)
	if err != nil {
		if errors.Is(err, steamerr.ErrNotFound) {
			return "", false, nil
		}
		return "", false, err
	}
	keys := append(append([]string{}, appsPath...), appID, "LaunchOptions")
	opts, ok := doc.LeafAt(keys...)
	if !ok || strings.TrimSpace(opts) == "" {
		return "", false, nil
	}
	return opts, true, nil
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// compareNumeric orders decimal strings by value without overflow.
func compareNumeric(a, b string) int {
	x, okA := new(big.Int).SetString(a, 10)
	y, okB := new(big.Int).SetString(b, 10)
	if !okA || !okB {
		return strings.Compare(a, b)
	}
	return x.Cmp(y)
}
