package models

import "time"

// BirthdayLayout формат даты рождения в API и в БД
const BirthdayLayout = "2006-01-02"

// Contact представляет контакт из адресной книги пользователя.
// Каждый контакт принадлежит ровно одному пользователю (UserID).
type Contact struct {
	Birthday              time.Time `json:"birthday"`               // дата рождения (время не используется)
	AdditionalInformation *string   `json:"additional_information"` // заметки, до 250 символов
	UserID                string    `json:"user_id"`                // владелец контакта
	FirstName             string    `json:"first_name"`             // имя, до 15 символов
	LastName              string    `json:"last_name"`              // фамилия, до 15 символов
	Email                 string    `json:"email"`                  // уникальный email контакта
	ContactNumber         string    `json:"contact_number"`         // телефон в исходном виде (10 цифр после очистки)
	ID                    int64     `json:"id"`                     // автоинкрементный идентификатор
}

// monthDay is a (month, day) pair compared lexicographically.
type monthDay struct {
	month time.Month
	day   int
}

func monthDayOf(t time.Time) monthDay {
	return monthDay{month: t.Month(), day: t.Day()}
}

func (a monthDay) less(b monthDay) bool {
	if a.month != b.month {
		return a.month < b.month
	}
	return a.day < b.day
}

// BirthdayBetween reports whether birthday falls into the half-open window
// (from, to] comparing only month and day. Years are ignored, so a window
// that spans New Year (e.g. Dec 28 .. Jan 4) never matches anything.
func BirthdayBetween(birthday, from, to time.Time) bool {
	b := monthDayOf(birthday)
	return monthDayOf(from).less(b) && !monthDayOf(to).less(b)
}

// UpcomingBirthdays filters contacts whose birthday is in (from, to].
// The input order is preserved.
func UpcomingBirthdays(contacts []*Contact, from, to time.Time) []*Contact {
	upcoming := make([]*Contact, 0, len(contacts))
	for _, c := range contacts {
		if BirthdayBetween(c.Birthday, from, to) {
			upcoming = append(upcoming, c)
		}
	}
	return upcoming
}
