package ui

import (
	"errors"
	"log/slog"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"
	"github.com/tartampluch/go-yeartiles/internal/config"
	"github.com/tartampluch/go-yeartiles/internal/engine"
	"github.com/zalando/go-keyring"
)

// applyImport merges a finished import and returns how many entries it carried.
func (app *YearTilesApp) applyImport(items []engine.SpecialDay, err error) (int, error) {
	if err != nil {
		slog.Error(config.MsgImportFailed, config.LogKeyError, err, config.LogKeyComponent, config.CompUI)
		return 0, err
	}
	app.MergeImported(items)
	slog.Info(config.MsgImportSuccess, config.LogKeyCount, len(items), config.LogKeyComponent, config.CompUI)
	return len(items), nil
}

// fetchContacts downloads an address book. An empty password is looked up
// in the OS keyring for user.
func (app *YearTilesApp) fetchContacts(url, user, pass string) ([]engine.SpecialDay, error) {
	if app.Fetcher == nil {
		return nil, errors.New(config.ErrFetcherMissing)
	}
	if pass == "" && user != "" {
		if p, err := keyring.Get(config.KeyringService, user); err == nil {
			pass = p
		} else {
			slog.Debug(config.MsgPassFail,
				config.LogKeyUser, user,
				config.LogKeyError, err,
				config.LogKeyComponent, config.CompUI)
		}
	}
	return engine.ImportVCardURL(app.Ctx, app.Fetcher, url, user, pass)
}

// rememberSource stores the address book location. The password goes to
// the keyring, never to the preferences.
func (app *YearTilesApp) rememberSource(url, user, pass string) {
	app.Preferences.SetString(config.PrefVCardURL, url)
	app.Preferences.SetString(config.PrefVCardUser, user)

	if user != "" && pass != "" {
		if err := keyring.Set(config.KeyringService, user, pass); err != nil {
			slog.Error(config.MsgKeyringSave, config.LogKeyError, err, config.LogKeyComponent, config.CompUI)
		}
	}
}

// reportImport tells the user how the import went.
func (app *YearTilesApp) reportImport(count int, err error) {
	if app.Window == nil {
		return
	}
	if err != nil {
		dialog.ShowError(errors.New(app.GetMsg(config.TKeyErrImport)), app.Window)
		return
	}
	dialog.ShowInformation(config.AppName,
		app.GetFormat(config.TKeyMsgImported, map[string]any{"Count": count}),
		app.Window)
}

// showImportFile lets the user pick a vCard file and merges its birthdays.
func (app *YearTilesApp) showImportFile() {
	if app.Window == nil {
		return
	}
	d := dialog.NewFileOpen(func(r fyne.URIReadCloser, err error) {
		if err != nil {
			app.reportImport(app.applyImport(nil, err))
			return
		}
		if r == nil {
			return
		}
		defer r.Close()
		items, err := engine.ImportVCard(app.Ctx, r)
		app.reportImport(app.applyImport(items, err))
	}, app.Window)
	d.SetFilter(storage.NewExtensionFileFilter([]string{config.ExtVCF, config.ExtVCard}))
	d.Show()
}

// showImportURL asks for a CardDAV/vCard URL and imports it in the background.
func (app *YearTilesApp) showImportURL() {
	if app.Window == nil {
		return
	}

	urlEntry := widget.NewEntry()
	urlEntry.SetText(app.Preferences.String(config.PrefVCardURL))
	userEntry := widget.NewEntry()
	userEntry.SetText(app.Preferences.String(config.PrefVCardUser))
	passEntry := widget.NewPasswordEntry()

	items := []*widget.FormItem{
		widget.NewFormItem(app.GetMsg(config.TKeyLblURL), urlEntry),
		widget.NewFormItem(app.GetMsg(config.TKeyLblUser), userEntry),
		widget.NewFormItem(app.GetMsg(config.TKeyLblPass), passEntry),
	}

	dialog.ShowForm(app.GetMsg(config.TKeyBtnImportURL), app.GetMsg(config.TKeyBtnImport), app.GetMsg(config.TKeyBtnCancel), items,
		func(ok bool) {
			if !ok || urlEntry.Text == "" {
				return
			}
			url, user, pass := urlEntry.Text, userEntry.Text, passEntry.Text
			app.rememberSource(url, user, pass)

			go func() {
				list, err := app.fetchContacts(url, user, pass)
				fyne.Do(func() { app.reportImport(app.applyImport(list, err)) })
			}()
		}, app.Window)
}
