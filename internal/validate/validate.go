package validate

import (
	"fmt"
	"regexp"
	"strings"

	"nectix/internal/domain"
)

// Result итог проверки: флаг и список сообщений для пользователя.
// Сообщения на португальском — язык витрины.
type Result struct {
	IsValid bool     `json:"is_valid"`
	Errors  []string `json:"errors"`
}

func ok() Result {
	return Result{IsValid: true, Errors: []string{}}
}

func fail(msgs ...string) Result {
	return Result{IsValid: false, Errors: msgs}
}

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

var nonDigit = regexp.MustCompile(`\D`)

// Digits отбрасывает всё, кроме цифр
func Digits(s string) string {
	return nonDigit.ReplaceAllString(s, "")
}

// Email проверяет базовый шаблон local@domain.tld
func Email(s string) Result {
	s = strings.TrimSpace(s)
	if s == "" {
		return fail("E-mail é obrigatório")
	}
	if !emailRe.MatchString(s) {
		return fail("E-mail inválido")
	}
	return ok()
}

// CPF проверяет только разрядность (11 цифр), без контрольной суммы
func CPF(s string) Result {
	if len(Digits(s)) != 11 {
		return fail("CPF deve conter 11 dígitos")
	}
	return ok()
}

// CEP проверяет разрядность почтового индекса (8 цифр)
func CEP(s string) Result {
	if len(Digits(s)) != 8 {
		return fail("CEP deve conter 8 dígitos")
	}
	return ok()
}

// Phone требует минимум 10 цифр после отбрасывания форматирования
func Phone(s string) Result {
	if len(Digits(s)) < 10 {
		return fail("Telefone deve conter pelo menos 10 dígitos")
	}
	return ok()
}

// FormatCPF маска 000.000.000-00; предполагает корректную разрядность
func FormatCPF(s string) string {
	d := Digits(s)
	if len(d) != 11 {
		return s
	}
	return fmt.Sprintf("%s.%s.%s-%s", d[0:3], d[3:6], d[6:9], d[9:11])
}

// FormatCEP маска 00000-000
func FormatCEP(s string) string {
	d := Digits(s)
	if len(d) != 8 {
		return s
	}
	return d[0:5] + "-" + d[5:8]
}

// FormatPhone маска (00) 0000-0000 или (00) 00000-0000
func FormatPhone(s string) string {
	d := Digits(s)
	switch len(d) {
	case 10:
		return fmt.Sprintf("(%s) %s-%s", d[0:2], d[2:6], d[6:10])
	case 11:
		return fmt.Sprintf("(%s) %s-%s", d[0:2], d[2:7], d[7:11])
	default:
		return s
	}
}

// CheckoutData прогоняет все проверки формы и возвращает объединение всех
// сообщений, не останавливаясь на первом.
func CheckoutData(f domain.CheckoutForm) Result {
	var errs []string

	if strings.TrimSpace(f.Name) == "" {
		errs = append(errs, "Nome é obrigatório")
	}
	if r := Email(f.Email); !r.IsValid {
		errs = append(errs, r.Errors...)
	}
	if r := Phone(f.Phone); !r.IsValid {
		errs = append(errs, r.Errors...)
	}
	if f.CPF != "" {
		if r := CPF(f.CPF); !r.IsValid {
			errs = append(errs, r.Errors...)
		}
	}
	if strings.TrimSpace(f.PostalCode) == "" {
		errs = append(errs, "CEP é obrigatório")
	} else if r := CEP(f.PostalCode); !r.IsValid {
		errs = append(errs, r.Errors...)
	}

	required := []struct{ value, msg string }{
		{f.Street, "Rua é obrigatória"},
		{f.Number, "Número é obrigatório"},
		{f.Neighborhood, "Bairro é obrigatório"},
		{f.City, "Cidade é obrigatória"},
		{f.State, "Estado é obrigatório"},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			errs = append(errs, r.msg)
		}
	}

	if len(errs) > 0 {
		return Result{IsValid: false, Errors: errs}
	}
	return ok()
}
