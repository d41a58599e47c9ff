package ui

import (
	"errors"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/tartampluch/go-yeartiles/internal/config"
	"github.com/tartampluch/go-yeartiles/internal/engine"
)

// editorWidgets holds references to the form fields read on save.
type editorWidgets struct {
	monthSelect *widget.Select
	dayEntry    *NumericalEntry
	colorSelect *widget.Select
	labelEntry  *widget.Entry
	birthday    *widget.Check
}

// monthOptions lists "1".."12" for the month selector.
func monthOptions() []string {
	opts := make([]string, int(time.December))
	for i := range opts {
		opts[i] = strconv.Itoa(i + 1)
	}
	return opts
}

// maxDay is the longest the month can be in any year, so Feb 29 stays editable.
func maxDay(month int) int {
	return time.Date(config.DefaultLeapYear, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// editorDraft seeds the form: the existing entry on that date, or a new one
// in the default color.
func (app *YearTilesApp) editorDraft(month, day int) (engine.SpecialDay, bool) {
	if existing, ok := engine.FindSpecialDay(app.Settings.SpecialDays, month, day); ok {
		return existing, true
	}
	return engine.SpecialDay{Month: month, Day: day, Color: config.DefaultSpecialColor}, false
}

// readEditor validates the form and returns the entry it describes.
func (app *YearTilesApp) readEditor(ew *editorWidgets) (engine.SpecialDay, error) {
	month, _ := strconv.Atoi(ew.monthSelect.Selected)
	if err := ew.dayEntry.Validate(); err != nil {
		return engine.SpecialDay{}, err
	}
	if err := ew.labelEntry.Validate(); err != nil {
		return engine.SpecialDay{}, err
	}
	day, _ := strconv.Atoi(ew.dayEntry.Text)

	item := engine.SpecialDay{
		Month:      month,
		Day:        day,
		Color:      ew.colorSelect.Selected,
		Label:      strings.TrimSpace(ew.labelEntry.Text),
		IsBirthday: ew.birthday.Checked,
	}
	if !item.Valid() {
		return engine.SpecialDay{}, errors.New(app.GetMsg(config.TKeyErrInvalidDate))
	}
	return item, nil
}

// ShowEditor opens the special-date editor for month/day. Only one editor
// window exists at a time; reopening it moves it to the new date.
func (app *YearTilesApp) ShowEditor(month, day int) {
	if app.editorWindow != nil {
		slog.Debug(config.MsgEditorFocus, config.LogKeyComponent, config.CompUI)
		app.editorWindow.Close()
	}

	slog.Debug(config.MsgOpenEditor, config.LogKeyComponent, config.CompUI)
	w := app.App.NewWindow(app.GetMsg(config.TKeyLblEditor))
	app.editorWindow = w

	draft, exists := app.editorDraft(month, day)
	original := draft.Key()
	ew := app.newEditorWidgets(draft)

	swatch := canvas.NewRectangle(swatchColor(draft.Color))
	swatch.CornerRadius = config.UITileRadius
	swatch.SetMinSize(fyne.NewSquareSize(config.UITileSize))
	ew.colorSelect.OnChanged = func(hex string) {
		swatch.FillColor = swatchColor(hex)
		swatch.Refresh()
	}

	form := widget.NewForm(
		widget.NewFormItem(app.GetMsg(config.TKeyLblMonth), ew.monthSelect),
		widget.NewFormItem(app.GetMsg(config.TKeyLblDay), ew.dayEntry),
		widget.NewFormItem(app.GetMsg(config.TKeyLblColor), container.NewBorder(nil, nil, nil, swatch, ew.colorSelect)),
		widget.NewFormItem(app.GetMsg(config.TKeyLblLabel), ew.labelEntry),
		widget.NewFormItem("", ew.birthday),
	)

	btnSave := widget.NewButtonWithIcon(app.GetMsg(config.TKeyBtnSave), theme.DocumentSaveIcon(), func() {
		item, err := app.readEditor(ew)
		if err != nil {
			dialog.ShowError(err, w)
			return
		}
		var replacing *engine.MonthDay
		if exists {
			replacing = &original
		}
		app.UpsertSpecial(item, replacing)
		w.Close()
	})
	btnSave.Importance = widget.HighImportance

	btnCancel := widget.NewButtonWithIcon(app.GetMsg(config.TKeyBtnCancel), theme.CancelIcon(), func() { w.Close() })

	buttons := []fyne.CanvasObject{btnCancel, btnSave}
	if exists {
		btnDelete := widget.NewButtonWithIcon(app.GetMsg(config.TKeyBtnDelete), theme.DeleteIcon(), func() {
			app.RemoveSpecial(original.Month, original.Day)
			w.Close()
		})
		btnDelete.Importance = widget.DangerImportance
		buttons = []fyne.CanvasObject{btnDelete, btnCancel, btnSave}
	}

	w.SetContent(container.NewPadded(container.NewVBox(
		widget.NewCard(app.GetMsg(config.TKeyLblEditor), "", form),
		container.NewGridWithColumns(len(buttons), buttons...),
	)))
	w.SetOnClosed(func() {
		if app.editorWindow == w {
			app.editorWindow = nil
		}
	})
	w.Show()
}

// newEditorWidgets builds the form fields prefilled from draft.
func (app *YearTilesApp) newEditorWidgets(draft engine.SpecialDay) *editorWidgets {
	ew := &editorWidgets{}

	ew.monthSelect = widget.NewSelect(monthOptions(), nil)
	ew.monthSelect.SetSelected(strconv.Itoa(draft.Month))

	ew.dayEntry = NewNumericalEntry()
	ew.dayEntry.SetText(strconv.Itoa(draft.Day))
	ew.dayEntry.Validator = func(s string) error {
		month, _ := strconv.Atoi(ew.monthSelect.Selected)
		limit := maxDay(month)
		day, err := strconv.Atoi(s)
		if err != nil || day < 1 || day > limit {
			return errors.New(app.GetFormat(config.TKeyErrDayRange, map[string]any{"Max": limit}))
		}
		return nil
	}
	ew.monthSelect.OnChanged = func(string) { _ = ew.dayEntry.Validate() }

	colors := config.SpecialColorOptions
	if !slices.Contains(colors, draft.Color) {
		colors = append([]string{draft.Color}, colors...)
	}
	ew.colorSelect = widget.NewSelect(colors, nil)
	ew.colorSelect.SetSelected(draft.Color)

	ew.labelEntry = widget.NewEntry()
	ew.labelEntry.SetText(draft.Label)
	ew.labelEntry.Validator = func(s string) error {
		if utf8.RuneCountInString(strings.TrimSpace(s)) > config.MaxLabelLength {
			return errors.New(app.GetFormat(config.TKeyErrLabelLength, map[string]any{"Max": config.MaxLabelLength}))
		}
		return nil
	}

	ew.birthday = widget.NewCheck(app.GetMsg(config.TKeyLblBirthday), nil)
	ew.birthday.SetChecked(draft.IsBirthday)

	return ew
}
