package grant

import (
	"github.com/goliatone/go-formflow/pkg/field"
	"github.com/goliatone/go-formflow/pkg/i18n"
	"github.com/goliatone/go-formflow/pkg/rules"
)

func base(en, cy string) field.Message {
	return field.Message{Type: rules.TypeBase, Text: i18n.Bilingual(en, cy)}
}

func typed(errType, en, cy string) field.Message {
	return field.Message{Type: errType, Text: i18n.Bilingual(en, cy)}
}

func keyed(key, errType, en, cy string) field.Message {
	return field.Message{Type: errType, Key: key, Text: i18n.Bilingual(en, cy)}
}

func option(value, en, cy string) field.Option {
	return field.Option{Value: value, Label: i18n.Bilingual(en, cy)}
}

func addressMessages() []field.Message {
	return []field.Message{
		base("Enter a full UK address", "Rhowch gyfeiriad llawn yn y DU"),
		keyed("line1", rules.TypeRequired, "Enter a building and street", "Rhowch adeilad a stryd"),
		keyed("townCity", rules.TypeRequired, "Enter a town or city", "Rhowch dref neu ddinas"),
		keyed("townCity", rules.TypeStringMax, "Town or city must be {limit} characters or less", "Rhaid i'r dref neu ddinas fod yn {limit} nod neu lai"),
		keyed("postcode", rules.TypeRequired, "Enter a postcode", "Rhowch gôd post"),
		keyed("postcode", rules.TypeStringRegex, "Enter a real postcode", "Rhowch gôd post go iawn"),
	}
}

func nameMessages() []field.Message {
	return []field.Message{
		base("Enter first and last name", "Rhowch enw cyntaf ac olaf"),
		keyed("firstName", rules.TypeRequired, "Enter first name", "Rhowch enw cyntaf"),
		keyed("lastName", rules.TypeRequired, "Enter last name", "Rhowch gyfenw"),
	}
}

func dobMessages() []field.Message {
	return []field.Message{
		base("Enter a date of birth", "Rhowch ddyddiad geni"),
		typed(rules.TypeDateInvalid, "Enter a real date of birth", "Rhowch ddyddiad geni go iawn"),
		typed(rules.TypeDateMinAge, "They must be at least {minAge} years old", "Rhaid iddynt fod o leiaf {minAge} oed"),
	}
}

func emailMessages() []field.Message {
	return []field.Message{
		base("Enter an email address", "Rhowch gyfeiriad e-bost"),
		typed(rules.TypeStringEmail, "Email address must be in the correct format, like name@example.com", "Rhaid i'r cyfeiriad e-bost fod yn y fformat cywir, e.e enw@example.com"),
	}
}

func phoneMessages() []field.Message {
	return []field.Message{
		base("Enter a UK telephone number", "Rhowch rif ffôn yn y DU"),
		typed(rules.TypeStringPhone, "Enter a real UK telephone number", "Rhowch rif ffôn go iawn yn y DU"),
	}
}

func addressHistoryMessages() []field.Message {
	return []field.Message{
		base("Tell us if they have lived at their address for three years", "Dywedwch wrthym os ydynt wedi byw yn eu cyfeiriad am dair blynedd"),
		keyed("previousAddress", rules.TypeRequired, "Enter a previous address", "Rhowch gyfeiriad blaenorol"),
	}
}
