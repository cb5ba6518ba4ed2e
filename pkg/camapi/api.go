package camapi

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/zap"
)

// API maps every camera endpoint onto a typed call.
type API struct {
	gw Gateway
}

func NewAPI(gw Gateway) *API {
	return &API{gw: gw}
}

// ConfigureCamera computes a configuration from the requested settings and returns
// the requested values together with the allowed ones.
func (a *API) ConfigureCamera(ctx context.Context, requested Settings) (Settings, error) {
	v, err := a.gw.Post(ctx, "/configure_camera", requested)
	if err != nil {
		return nil, err
	}
	return toSettings(v)
}

// Run reconfigures and calibrates the camera and starts filling the pretrigger buffer.
func (a *API) Run(ctx context.Context, settings Settings) (OperationStatus, error) {
	v, err := a.gw.Post(ctx, "/run", settings)
	if err != nil {
		return 0, err
	}
	return toStatus(v)
}

func (a *API) Trigger(ctx context.Context, baseFilename string) (OperationStatus, error) {
	path := "/trigger"
	if baseFilename != "" {
		path += "?base_filename=" + url.QueryEscape(baseFilename)
	}
	return a.fetchStatus(ctx, path)
}

func (a *API) Cancel(ctx context.Context) (OperationStatus, error) {
	return a.fetchStatus(ctx, "/cancel")
}

// Save starts saving the filled multishot buffers.
func (a *API) Save(ctx context.Context) (OperationStatus, error) {
	return a.fetchStatus(ctx, "/save")
}

// SaveStop truncates the save in progress. With discardUnsaved the buffers not
// yet saved are dropped.
func (a *API) SaveStop(ctx context.Context, discardUnsaved bool) (OperationStatus, error) {
	path := "/save_stop"
	if discardUnsaved {
		path += "?discard_unsaved=1"
	}
	return a.fetchStatus(ctx, path)
}

func (a *API) GetCamStatus(ctx context.Context) (*CamStatus, error) {
	v, err := a.gw.Fetch(ctx, "/get_camstatus")
	if err != nil {
		return nil, err
	}
	return DecodeCamStatus(v)
}

func (a *API) GetCurrentSettings(ctx context.Context) (Settings, error) {
	return a.fetchSettings(ctx, "/get_current_settings")
}

// GetSavedSettings returns the last saved settings, or the settings stored under id.
func (a *API) GetSavedSettings(ctx context.Context, id string) (Settings, error) {
	path := "/get_saved_settings"
	if id != "" {
		path += "?id=" + url.QueryEscape(id)
	}
	return a.fetchSettings(ctx, path)
}

func (a *API) PretriggerFillLevel(ctx context.Context) (int, error) {
	v, err := a.gw.Fetch(ctx, "/pretrigger_buffer_fill_level")
	if err != nil {
		return 0, err
	}
	n, ok := toInt64(v)
	if !ok {
		return 0, fmt.Errorf("%w: fill level %v", ErrUnexpectedValue, v)
	}
	return int(n), nil
}

func (a *API) GetCamInfo(ctx context.Context) (map[string]any, error) {
	return a.fetchMap(ctx, "/get_caminfo")
}

// GetStorageDir returns the mount point of the active storage device, or an empty
// string when no storage is available.
func (a *API) GetStorageDir(ctx context.Context) (string, error) {
	v, err := a.gw.Fetch(ctx, "/get_storage_dir")
	if err != nil {
		return "", err
	}
	if v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: storage dir %v", ErrUnexpectedValue, v)
	}
	return s, nil
}

func (a *API) GetStorageInfo(ctx context.Context, device string) (map[string]any, error) {
	path := "/get_storage_info"
	if device != "" {
		path += "?device=" + url.QueryEscape(device)
	}
	return a.fetchMap(ctx, path)
}

// SaveFavorite stores settings in the favorite slot named by its "id" key.
func (a *API) SaveFavorite(ctx context.Context, settings Settings) (OperationStatus, error) {
	v, err := a.gw.Post(ctx, "/save_favorite", settings)
	if err != nil {
		return 0, err
	}
	return toStatus(v)
}

func (a *API) GetFavorite(ctx context.Context, id string) (Settings, error) {
	return a.fetchSettings(ctx, "/get_favorite?id="+url.QueryEscape(id))
}

func (a *API) GetFavoriteIDs(ctx context.Context) ([]string, error) {
	v, err := a.gw.Fetch(ctx, "/get_favorite_ids")
	if err != nil {
		return nil, err
	}
	if v == nil {
		return []string{}, nil
	}
	items, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: favorite ids %v", ErrUnexpectedValue, v)
	}
	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, fmt.Sprint(item))
	}
	return ids, nil
}

func (a *API) DeleteFavorite(ctx context.Context, id string) (OperationStatus, error) {
	return a.fetchStatus(ctx, "/delete_favorite?id="+url.QueryEscape(id))
}

// DeleteAllFavorites removes every stored favorite.
func (a *API) DeleteAllFavorites(ctx context.Context) error {
	ids, err := a.GetFavoriteIDs(ctx)
	if err != nil {
		return err
	}
	for _, id := range ids {
		status, err := a.DeleteFavorite(ctx, id)
		if err != nil {
			return err
		}
		zap.S().Named("camapi").Debugw("favorite deleted", "id", id, "status", status)
	}
	return nil
}

// StatusString returns a human readable line describing the camera status.
func (a *API) StatusString(ctx context.Context) (string, error) {
	_, text, err := a.DescribeStatus(ctx)
	return text, err
}

// DescribeStatus reads the status and renders it. The current settings are only
// fetched while multishot buffers are being filled.
func (a *API) DescribeStatus(ctx context.Context) (*CamStatus, string, error) {
	st, err := a.GetCamStatus(ctx)
	if err != nil {
		return nil, "", err
	}

	multishotCount := 0
	if st.ActiveBuffer != nil && st.CapturedBuffers == nil {
		current, err := a.GetCurrentSettings(ctx)
		if err != nil {
			return nil, "", err
		}
		multishotCount, _ = current.MultishotCount()
	}

	return st, FormatStatus(st, multishotCount), nil
}

var infoLabels = []struct {
	key   string
	label string
}{
	{"sw_build_date", "Software build date"},
	{"build_date", "Hardware build date"},
	{"fpga_version", "FPGA version"},
	{"model_number", "Model Number"},
	{"serial_number", "Serial Number"},
	{"hardware_revision", "Hardware Revision"},
	{"hardware_configuration", "Hardware Configuration"},
}

// InfoString describes the camera, one prefixed line per known caminfo field.
func (a *API) InfoString(ctx context.Context, prefix string) (string, error) {
	info, err := a.GetCamInfo(ctx)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for _, l := range infoLabels {
		if v, ok := info[l.key]; ok {
			fmt.Fprintf(&b, "%s%s: %v\n", prefix, l.label, v)
		}
	}
	if v, ok := info["ir_filter"]; ok {
		installed := "installed"
		if n, _ := toInt64(v); n == 0 {
			installed = "not installed"
		}
		fmt.Fprintf(&b, "%sIR Filter: %s\n", prefix, installed)
	}
	if v, ok := info["mac_addr"]; ok {
		fmt.Fprintf(&b, "%sEthernet MAC Address: %v\n", prefix, v)
	}
	return b.String(), nil
}

func (a *API) fetchStatus(ctx context.Context, path string) (OperationStatus, error) {
	v, err := a.gw.Fetch(ctx, path)
	if err != nil {
		return 0, err
	}
	return toStatus(v)
}

func (a *API) fetchSettings(ctx context.Context, path string) (Settings, error) {
	v, err := a.gw.Fetch(ctx, path)
	if err != nil {
		return nil, err
	}
	return toSettings(v)
}

func (a *API) fetchMap(ctx context.Context, path string) (map[string]any, error) {
	v, err := a.gw.Fetch(ctx, path)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return map[string]any{}, nil
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: %s returned %T", ErrUnexpectedValue, path, v)
	}
	return m, nil
}

func toStatus(v any) (OperationStatus, error) {
	n, ok := toExactInt64(v)
	if !ok {
		return 0, fmt.Errorf("%w: operation status %v", ErrUnexpectedValue, v)
	}
	return ParseOperationStatus(n)
}

func toSettings(v any) (Settings, error) {
	if v == nil {
		return Settings{}, nil
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: settings are %T", ErrUnexpectedValue, v)
	}
	return Settings(m), nil
}
