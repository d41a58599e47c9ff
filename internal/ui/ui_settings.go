package ui

import (
	"fmt"
	"image/color"
	"slices"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/tartampluch/go-yeartiles/internal/config"
	"github.com/tartampluch/go-yeartiles/internal/engine"
	"github.com/tartampluch/go-yeartiles/internal/render"
)

// mainView keeps references to the widgets refreshed after each edit.
type mainView struct {
	statsLabel  *widget.Label
	todayLabel  *widget.Label
	hoverLabel  *widget.Label
	tzSelect    *widget.Select
	grid        *yearGrid
	specialsBox *fyne.Container
	shareEntry  *widget.Entry
	statusLabel *widget.Label
}

// ShowMainWindow opens the single application window.
func (app *YearTilesApp) ShowMainWindow() {
	if app.Window != nil {
		app.Window.RequestFocus()
		return
	}

	w := app.App.NewWindow(app.GetMsg(config.TKeyWinTitle))
	app.Window = w
	w.SetContent(app.buildContent())
	w.Resize(fyne.NewSize(config.WindowWidth, config.WindowHeight))
	w.SetMaster()
	w.SetOnClosed(func() {
		app.Window = nil
		app.view = nil
	})
	w.Show()
}

// buildContent assembles the header, controls, grid, special dates and share card.
func (app *YearTilesApp) buildContent() fyne.CanvasObject {
	v := &mainView{}
	app.view = v

	// --- Header ---
	v.statsLabel = widget.NewLabel("")
	v.statsLabel.TextStyle = fyne.TextStyle{Bold: true}
	v.statsLabel.Alignment = fyne.TextAlignCenter

	v.todayLabel = widget.NewLabel("")
	v.todayLabel.Alignment = fyne.TextAlignCenter

	v.hoverLabel = widget.NewLabel("")
	v.hoverLabel.Alignment = fyne.TextAlignCenter
	v.hoverLabel.TextStyle = fyne.TextStyle{Italic: true}

	// --- Settings ---
	langSelect := widget.NewSelect(app.SupportedLanguages, nil)
	langSelect.SetSelected(app.Tr.Lang())
	langSelect.OnChanged = func(lang string) {
		if lang != app.Tr.Lang() {
			app.SetLanguage(lang)
		}
	}

	v.tzSelect = widget.NewSelect(timeZoneOptions(app.Settings.TimeZone), nil)
	v.tzSelect.SetSelected(app.Settings.TimeZone)
	v.tzSelect.OnChanged = app.SetTimeZone

	presetSelect := widget.NewSelect(config.WallpaperPresets, nil)
	presetSelect.SetSelected(app.Preset)
	presetSelect.OnChanged = app.SetPreset

	settingsForm := widget.NewForm(
		widget.NewFormItem(app.GetMsg(config.TKeyLblLanguage), langSelect),
		widget.NewFormItem(app.GetMsg(config.TKeyLblTimeZone), v.tzSelect),
		widget.NewFormItem(app.GetMsg(config.TKeyLblPreset), presetSelect),
	)
	settingsCard := widget.NewCard(app.GetMsg(config.TKeyLblSettings), "", settingsForm)

	// --- Grid ---
	v.grid = newYearGrid(
		func(t engine.YearTile) { app.ShowEditor(t.Month, t.Day) },
		func(t engine.YearTile, in bool) {
			if !in {
				v.hoverLabel.SetText("")
				return
			}
			v.hoverLabel.SetText(app.hoverText(t))
		},
	)

	// --- Special dates ---
	v.specialsBox = container.NewVBox()
	btnAdd := widget.NewButtonWithIcon(app.GetMsg(config.TKeyBtnAdd), theme.ContentAddIcon(), func() {
		app.ShowEditor(int(app.Now.Month()), app.Now.Day())
	})
	btnImport := widget.NewButtonWithIcon(app.GetMsg(config.TKeyBtnImport), theme.FolderOpenIcon(), app.showImportFile)
	btnImportURL := widget.NewButtonWithIcon(app.GetMsg(config.TKeyBtnImportURL), theme.DownloadIcon(), app.showImportURL)
	specialsCard := widget.NewCard(app.GetMsg(config.TKeyLblSpecials), "", container.NewVBox(
		v.specialsBox,
		container.NewGridWithColumns(config.LayoutColumnsTriple, btnAdd, btnImport, btnImportURL),
	))

	// --- Share ---
	v.shareEntry = widget.NewEntry()
	v.shareEntry.SetText(app.ShareURL)
	v.statusLabel = widget.NewLabel("")

	btnGenerate := widget.NewButtonWithIcon(app.GetMsg(config.TKeyBtnGenerate), theme.MailSendIcon(), app.GenerateLink)
	btnGenerate.Importance = widget.HighImportance
	btnCopy := widget.NewButtonWithIcon(app.GetMsg(config.TKeyBtnCopy), theme.ContentCopyIcon(), app.copyWithFeedback)

	shareCard := widget.NewCard(app.GetMsg(config.TKeyLblShare), "", container.NewVBox(
		container.NewGridWithColumns(config.LayoutColumnsDouble, btnGenerate, btnCopy),
		v.shareEntry,
		v.statusLabel,
	))

	// --- Footer ---
	footerLabel := widget.NewLabel(app.GetFormat(config.TKeyLblFooter, map[string]any{"Version": config.Version}))
	footerLabel.Alignment = fyne.TextAlignCenter
	footerLabel.TextStyle = fyne.TextStyle{Italic: true}

	v.update(app)

	return container.NewVScroll(container.NewPadded(container.NewVBox(
		v.statsLabel,
		v.todayLabel,
		container.NewCenter(v.grid.box),
		v.hoverLabel,
		settingsCard,
		specialsCard,
		shareCard,
		footerLabel,
	)))
}

// update redraws everything derived from the app state.
func (v *mainView) update(app *YearTilesApp) {
	now := app.Now
	loc, _ := engine.ResolveLocation(app.Settings.TimeZone)
	byDate := engine.BuildSpecialByDate(now, loc, app.Settings.SpecialDays)

	v.statsLabel.SetText(app.statsText(engine.GetYearStats(now)))
	v.grid.update(engine.BuildYearTiles(now, byDate))

	if today, ok := engine.TodaySpecial(now, byDate); ok {
		v.todayLabel.SetText(app.describeSpecial(today))
	} else {
		v.todayLabel.SetText("")
	}

	if opts := timeZoneOptions(app.Settings.TimeZone); !slices.Equal(opts, v.tzSelect.Options) {
		v.tzSelect.Options = opts
		v.tzSelect.Refresh()
	}

	v.specialsBox.Objects = app.specialRows()
	v.specialsBox.Refresh()
}

// showShare displays a freshly generated link.
func (v *mainView) showShare(app *YearTilesApp, res ShareResult) {
	v.shareEntry.SetText(res.URL)
	if res.Inline {
		v.statusLabel.SetText(app.GetMsg(config.TKeyMsgInlineLink))
	} else {
		v.statusLabel.SetText("")
	}
}

// specialRows renders one row per special day with a color swatch and a delete button.
func (app *YearTilesApp) specialRows() []fyne.CanvasObject {
	if len(app.Settings.SpecialDays) == 0 {
		empty := widget.NewLabel(app.GetMsg(config.TKeyLblNoSpecials))
		empty.TextStyle = fyne.TextStyle{Italic: true}
		return []fyne.CanvasObject{empty}
	}

	rows := make([]fyne.CanvasObject, 0, len(app.Settings.SpecialDays))
	for _, item := range app.Settings.SpecialDays {
		swatch := canvas.NewRectangle(swatchColor(item.Color))
		swatch.CornerRadius = config.UITileRadius
		swatch.SetMinSize(fyne.NewSquareSize(config.SwatchSize))

		caption := fmt.Sprintf(config.FormatSpecialRow, item.Month, item.Day, app.describeSpecial(item))
		btnEdit := widget.NewButton(caption, func() { app.ShowEditor(item.Month, item.Day) })
		btnEdit.Alignment = widget.ButtonAlignLeading
		btnEdit.Importance = widget.LowImportance

		btnDelete := widget.NewButtonWithIcon("", theme.DeleteIcon(), func() {
			app.RemoveSpecial(item.Month, item.Day)
		})

		rows = append(rows, container.NewBorder(nil, nil, container.NewCenter(swatch), btnDelete, btnEdit))
	}
	return rows
}

// hoverText names the hovered date and its special day, if any.
func (app *YearTilesApp) hoverText(t engine.YearTile) string {
	if t.Special == nil {
		return t.DateISO
	}
	return t.DateISO + " " + config.TextSeparatorDot + " " + app.describeSpecial(*t.Special)
}

// copyWithFeedback copies the link and flashes a short confirmation.
func (app *YearTilesApp) copyWithFeedback() {
	v := app.view
	if !app.CopyLink() {
		if v != nil {
			v.statusLabel.SetText(app.GetMsg(config.TKeyMsgCopyFailed))
		}
		return
	}
	if v == nil {
		return
	}
	v.statusLabel.SetText(app.GetMsg(config.TKeyMsgCopied))
	time.AfterFunc(config.CopyFeedbackDelay, func() {
		fyne.Do(func() { v.statusLabel.SetText("") })
	})
}

// timeZoneOptions lists the common zones, prepending the current one when missing.
func timeZoneOptions(current string) []string {
	if current == "" || slices.Contains(config.CommonTimeZones, current) {
		return config.CommonTimeZones
	}
	return append([]string{current}, config.CommonTimeZones...)
}

// swatchColor parses a palette hex, falling back to the default special color.
func swatchColor(hex string) color.Color {
	if c, ok := render.ParseHex(hex); ok {
		return c
	}
	c, _ := render.ParseHex(config.DefaultSpecialColor)
	return c
}
