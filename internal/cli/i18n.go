package cli

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Message keys. The English text doubles as the key.
const (
	msgProduct        = "Product"
	msgQuantity       = "Quantity"
	msgPrice          = "Price"
	msgLineTotal      = "Total"
	msgTotalDue       = "Total due"
	msgCashReceived   = "Cash received"
	msgRemaining      = "left"
	msgNoItems        = "No products yet"
	msgDraft          = "Draft"
	msgBound          = "Editing history entry %s"
	msgWarning        = "WARNING"
	msgConfirmRemove  = "Are you sure you want to delete this item?"
	msgConfirmClear   = "All the info will be saved in the history"
	msgConfirmChoices = "[d]elete / [N]ot sure"
	msgCanceled       = "Not sure, nothing changed"
	msgNeedYes        = "Not a terminal; pass --yes to confirm"
	msgHistoryEmpty   = "History is empty"
	msgHistoryName    = "History name"
	msgAmount         = "Amount"
	msgDate           = "Date"
	msgSaved          = "Saved to history as %s"
	msgRestored       = "Restored %s"
	msgRenamed        = "Renamed %s"
	msgLanguage       = "Language: English"
)

var catalog = map[string][2]string{
	msgProduct:        {"Product", "المنتج"},
	msgQuantity:       {"Quantity", "الكمية"},
	msgPrice:          {"Price", "السعر"},
	msgLineTotal:      {"Total", "المجموع"},
	msgTotalDue:       {"Total due", "المجموع الكلي"},
	msgCashReceived:   {"Cash received", "المبلغ المدفوع"},
	msgRemaining:      {"left", "المتبقي"},
	msgNoItems:        {"No products yet", "لا توجد منتجات بعد"},
	msgDraft:          {"Draft", "مسودة"},
	msgBound:          {"Editing history entry %s", "تعديل سجل %s"},
	msgWarning:        {"WARNING", "تحذير"},
	msgConfirmRemove:  {"Are you sure you want to delete this item?", "هل أنت متأكد من رغبتك في حذف هذه البطاقة؟"},
	msgConfirmClear:   {"All the info will be saved in the history", "سيتم حفظ جميع البيانات المدخلة في السجل"},
	msgConfirmChoices: {"[d]elete / [N]ot sure", "[d] أحذف / [N] غير متأكد"},
	msgCanceled:       {"Not sure, nothing changed", "غير متأكد، لم يتغير شيء"},
	msgNeedYes:        {"Not a terminal; pass --yes to confirm", "ليست طرفية؛ استخدم --yes للتأكيد"},
	msgHistoryEmpty:   {"History is empty", "السجل فارغ"},
	msgHistoryName:    {"History name", "اسم السجل"},
	msgAmount:         {"Amount", "المبلغ"},
	msgDate:           {"Date", "التاريخ"},
	msgSaved:          {"Saved to history as %s", "تم الحفظ في السجل باسم %s"},
	msgRestored:       {"Restored %s", "تمت استعادة %s"},
	msgRenamed:        {"Renamed %s", "تمت إعادة تسمية %s"},
	msgLanguage:       {"Language: English", "اللغة: العربية"},
}

func init() {
	for key, text := range catalog {
		_ = message.SetString(language.English, key, text[0])
		_ = message.SetString(language.Arabic, key, text[1])
	}
}

// rlm is the Unicode right-to-left mark, prefixed to Arabic lines so
// terminals that honor bidi render them right-to-left.
const rlm = "‏"

// localizer prints catalog messages in the session's language.
type localizer struct {
	p      *message.Printer
	arabic bool
}

func newLocalizer(arabic bool) localizer {
	tag := language.English
	if arabic {
		tag = language.Arabic
	}
	return localizer{p: message.NewPrinter(tag), arabic: arabic}
}

// T translates key, formatting args into it. Arguments should be strings so
// that numbers keep their plain formatting.
func (l localizer) T(key string, args ...any) string {
	return l.p.Sprintf(key, args...)
}

// line prefixes s with the direction mark when Arabic.
func (l localizer) line(s string) string {
	if l.arabic {
		return rlm + s
	}
	return s
}
