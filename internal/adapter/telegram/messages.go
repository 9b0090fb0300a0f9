package telegram

import (
	stdErrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/johnquangdev/cyberon-reporter/internal/domain/entities"
	usecaseErrors "github.com/johnquangdev/cyberon-reporter/internal/usecase/errors"
)

// Bot replies
const (
	StartMessage = `Привет! Отправь мне голосовое сообщение, и я преобразую его в таблицу!

Например:

Иванов оценка C(10 киберонов),
Смирнов Михаил оценка B(15 киберонов),
Беркут Тимофей оценка A(30 киберонов),
Сидоров Ваня не был

младшая группа город Москва`

	AskVoiceMessage     = "Отправь мне голосовое сообщение для распознавания!"
	NoSpeechMessage     = "❌ Не удалось распознать речь"
	UnexpectedMessage   = "❌ Произошла непредвиденная ошибка при обработке сообщения"
	RenderFailedMessage = "❌ Произошла ошибка при создании таблицы"
	TooLargeMessage     = "❌ Голосовое сообщение слишком большое"
	RateLimitedMessage  = "⏳ Слишком много отчетов, попробуйте через %d мин."
)

const captionDateLayout = "02.01.2006"

// Caption is the text sent along with a rendered report. The date is the
// day the report was made, not the dictated one.
func Caption(group string, now time.Time, excerpt, downloadURL string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📊 Отчет по занятию\nГруппа: %s\nДата: %s\n\nВаш текст: %s", group, now.Format(captionDateLayout), excerpt)
	if downloadURL != "" {
		fmt.Fprintf(&b, "\n\n🔗 %s", downloadURL)
	}
	return b.String()
}

// FailureText picks the reply for a run that did not produce a report
func FailureText(o entities.Outcome) string {
	switch v := o.(type) {
	case entities.NoSpeechRecognized:
		return NoSpeechMessage
	case entities.ExtractionFailed:
		if stdErrors.Is(v.Cause, usecaseErrors.ErrUpstream) {
			return UnexpectedMessage
		}
		return NoSpeechMessage
	case entities.RenderFailed:
		return RenderFailedMessage
	default:
		return UnexpectedMessage
	}
}

// RateLimitedText tells the user when they may send the next voice message
func RateLimitedText(resetIn time.Duration) string {
	minutes := int((resetIn + time.Minute - 1) / time.Minute)
	if minutes < 1 {
		minutes = 1
	}
	return fmt.Sprintf(RateLimitedMessage, minutes)
}
