package grant

import (
	"regexp"
	"strings"

	"github.com/goliatone/go-formflow/pkg/answers"
	"github.com/goliatone/go-formflow/pkg/field"
	"github.com/goliatone/go-formflow/pkg/i18n"
	"github.com/goliatone/go-formflow/pkg/rules"
)

// Organisation types.
const (
	OrgUnregistered  = "unregistered-vco"
	OrgCharity       = "unincorporated-registered-charity"
	OrgCIO           = "charitable-incorporated-organisation"
	OrgNotForProfit  = "not-for-profit-company"
	OrgSchool        = "school"
	OrgCollege       = "college-or-university"
	OrgStatutoryBody = "statutory-body"
	OrgFaithGroup    = "faith-group"
)

const (
	maxProjectCost      = 10000
	maxBudgetRows       = 10
	minProjectLeadDays  = 12 * 7
	maxProjectSpanMonth = 12
	maxStatementBytes   = 12 * 1024 * 1024
)

// Countries.
const (
	CountryEngland         = "england"
	CountryScotland        = "scotland"
	CountryWales           = "wales"
	CountryNorthernIreland = "northern-ireland"
)

var (
	sortCodePattern      = regexp.MustCompile(`^\d{2}-?\d{2}-?\d{2}$`)
	accountNumberPattern = regexp.MustCompile(`^\d{6,8}$`)

	// Schools and statutory bodies are not asked for personal details of
	// their contacts.
	noPersonalDetails = field.AnyOf("organisationType", OrgSchool, OrgCollege, OrgStatutoryBody)
	personalDetails   = field.Not(noPersonalDetails)

	requiresCompanyNumber = field.AnyOf("organisationType", OrgNotForProfit)
	requiresCharityNumber = field.AnyOf("organisationType", OrgCharity, OrgCIO)
	requiresEducationNo   = field.AnyOf("organisationType", OrgSchool, OrgCollege)
)

func projectFields() field.Catalog {
	return field.Catalog{
		{
			Name:   "projectName",
			Type:   field.TypeText,
			Label:  i18n.Bilingual("What is the name of your project?", "Beth yw enw eich prosiect?"),
			Schema: rules.String().Max(80).Required(),
			Messages: []field.Message{
				base("Enter a project name", "Rhowch enw prosiect"),
				typed(rules.TypeStringMax, "Project name must be {limit} characters or less", "Rhaid i enw'r prosiect fod yn {limit} nod neu lai"),
			},
			Required: field.Always,
		},
		{
			Name:  "projectCountry",
			Type:  field.TypeRadio,
			Label: i18n.Bilingual("What country will your project be based in?", "Ym mha wlad fydd eich prosiect wedi'i leoli?"),
			Options: []field.Option{
				option(CountryEngland, "England", "Lloegr"),
				option(CountryNorthernIreland, "Northern Ireland", "Gogledd Iwerddon"),
				option(CountryScotland, "Scotland", "Yr Alban"),
				option(CountryWales, "Wales", "Cymru"),
			},
			Messages: []field.Message{base("Select a country", "Dewiswch wlad")},
			Required: field.Always,
		},
		{
			Name:        "projectLocation",
			Type:        field.TypeSelect,
			Label:       i18n.Bilingual("Where will your project take place?", "Lle bydd eich prosiect yn cymryd lle?"),
			OptionsFunc: locationOptions,
			ShouldShow:  field.Answered("projectCountry"),
			Required:    field.Always,
			Messages:    []field.Message{base("Select a location", "Dewiswch leoliad")},
		},
		{
			Name:   "projectDateRange",
			Type:   field.TypeDateRange,
			Label:  i18n.Bilingual("When would you like to start and end your project?", "Pryd hoffech ddechrau a gorffen eich prosiect?"),
			Schema: rules.DateRange(minProjectLeadDays, maxProjectSpanMonth).Required(),
			Messages: []field.Message{
				base("Enter a project start and end date", "Rhowch ddyddiad dechrau a gorffen i'r prosiect"),
				typed(rules.TypeDateRangeInvalid, "Enter real start and end dates", "Rhowch ddyddiadau dechrau a gorffen go iawn"),
				typed(rules.TypeDateRangeMinDate, "Date you start the project must be at least 12 weeks into the future", "Rhaid i ddyddiad dechrau'r prosiect fod o leiaf 12 wythnos yn y dyfodol"),
				typed(rules.TypeDateRangeOrder, "Date you end the project must be after the start date", "Rhaid i'r dyddiad gorffen fod ar ôl y dyddiad dechrau"),
				typed(rules.TypeDateRangeSpan, "Date you end the project must be within {maxMonths} months of the start date", "Rhaid i'r dyddiad gorffen fod o fewn {maxMonths} mis i'r dyddiad dechrau"),
			},
			Required: field.Always,
		},
		{
			Name:     "projectPostcode",
			Type:     field.TypeText,
			Label:    i18n.Bilingual("What is the postcode of where your project will take place?", "Beth yw côd post lleoliad eich prosiect?"),
			Schema:   rules.Postcode().Required(),
			Messages: []field.Message{base("Enter a real postcode", "Rhowch gôd post go iawn")},
			Required: field.Always,
		},
		{
			Name:   "yourIdeaProject",
			Type:   field.TypeTextarea,
			Label:  i18n.Bilingual("What would you like to do?", "Beth hoffech ei wneud?"),
			Schema: rules.String().WordCount(50, 300).Max(3000).Required(),
			Messages: []field.Message{
				base("Tell us about your project", "Dywedwch wrthym am eich prosiect"),
				typed(rules.TypeMinWords, "Answer must be at least {limit} words", "Rhaid i'r ateb fod yn o leiaf {limit} gair"),
				typed(rules.TypeMaxWords, "Answer must be no more than {limit} words", "Rhaid i'r ateb fod yn llai na {limit} gair"),
			},
			Required: field.Always,
		},
		{
			Name:   "yourIdeaCommunity",
			Type:   field.TypeTextarea,
			Label:  i18n.Bilingual("How does your project involve your community?", "Sut mae eich prosiect yn cynnwys eich cymuned?"),
			Schema: rules.String().WordCount(50, 200).Max(2000).Required(),
			Messages: []field.Message{
				base("Tell us how your project involves your community", "Dywedwch wrthym sut mae eich prosiect yn cynnwys eich cymuned"),
				typed(rules.TypeMinWords, "Answer must be at least {limit} words", "Rhaid i'r ateb fod yn o leiaf {limit} gair"),
				typed(rules.TypeMaxWords, "Answer must be no more than {limit} words", "Rhaid i'r ateb fod yn llai na {limit} gair"),
			},
			Required: field.Always,
		},
		{
			Name:   "projectBudget",
			Type:   field.TypeBudget,
			Label:  i18n.Bilingual("List the costs you would like us to fund", "Rhestrwch y costau yr hoffech i ni eu hariannu"),
			Schema: rules.Budget(maxBudgetRows, maxProjectCost).Required(),
			Messages: []field.Message{
				base("Enter a project budget", "Rhowch gyllideb prosiect"),
				typed(rules.TypeBudgetOver, "Costs you would like us to fund must be less than £10,000", "Rhaid i'r costau yr hoffech i ni eu hariannu fod yn llai na £10,000"),
				typed(rules.TypeArrayMax, "Enter no more than {limit} budget headings", "Rhowch ddim mwy na {limit} pennawd cyllideb"),
			},
			Required: field.Always,
		},
		{
			Name:   "projectTotalCosts",
			Type:   field.TypeCurrency,
			Label:  i18n.Bilingual("Tell us the total cost of your project", "Dywedwch wrthym gyfanswm cost eich prosiect"),
			Schema: rules.Currency().AtLeastBudget("projectBudget").Required(),
			Messages: []field.Message{
				base("Enter a total cost for your project", "Rhowch gyfanswm cost i'ch prosiect"),
				typed(rules.TypeNumberBase, "Total cost must be a real number", "Rhaid i'r cyfanswm fod yn rif go iawn"),
				typed(rules.TypeBudgetTotal, "Total cost must be the same as or higher than the amount you're asking us to fund", "Rhaid i'r cyfanswm fod yr un peth neu'n uwch na'r swm rydych yn gofyn i ni ei ariannu"),
			},
			Required: field.Always,
		},
	}
}

var locations = map[string][]field.Option{
	CountryEngland: {
		option("north-east", "North East", "Gogledd Ddwyrain"),
		option("north-west", "North West", "Gogledd Orllewin"),
		option("london", "London", "Llundain"),
		option("south-west", "South West", "De Orllewin"),
	},
	CountryScotland: {
		option("highlands", "Highlands and Islands", "Ucheldiroedd ac Ynysoedd"),
		option("glasgow", "Glasgow", "Glasgow"),
		option("edinburgh", "Edinburgh", "Caeredin"),
	},
	CountryWales: {
		option("cardiff", "Cardiff", "Caerdydd"),
		option("gwynedd", "Gwynedd", "Gwynedd"),
		option("powys", "Powys", "Powys"),
	},
	CountryNorthernIreland: {
		option("belfast", "Belfast", "Belffast"),
		option("derry-strabane", "Derry and Strabane", "Derry a Strabane"),
	},
}

func locationOptions(data answers.Set) []field.Option {
	return locations[data.String("projectCountry")]
}

func beneficiaryFields() field.Catalog {
	yesNo := []field.Option{option("yes", "Yes", "Ydi"), option("no", "No", "Nac ydi")}
	groupsChosen := field.Equals("beneficiariesGroupsCheck", "yes")
	return field.Catalog{
		{
			Name:     "beneficiariesGroupsCheck",
			Type:     field.TypeRadio,
			Label:    i18n.Bilingual("Is your project aimed at one of the following groups of people?", "A yw eich prosiect wedi'i anelu at un o'r grwpiau canlynol?"),
			Options:  yesNo,
			Messages: []field.Message{base("Answer yes or no", "Atebwch ie neu na")},
			Required: field.Always,
		},
		{
			Name:  "beneficiariesGroups",
			Type:  field.TypeCheckbox,
			Label: i18n.Bilingual("What specific groups is your project aimed at?", "At ba grwpiau penodol mae eich prosiect wedi'i anelu?"),
			Options: []field.Option{
				option("ethnic-background", "People from a particular ethnic background", "Pobl o gefndir ethnig penodol"),
				option("gender", "People of a particular gender", "Pobl o ryw penodol"),
				option("age", "People of a particular age", "Pobl o oedran penodol"),
				option("disabled-people", "Disabled people", "Pobl anabl"),
				option("religion", "People with a particular religious belief", "Pobl â chred grefyddol benodol"),
				option("lgbt", "Lesbian, gay, or bisexual people", "Pobl lesbiaidd, hoyw neu ddeurywiol"),
			},
			ShouldShow: groupsChosen,
			Required:   groupsChosen,
			Messages:   []field.Message{base("Select the specific group(s) of people your project is aimed at", "Dewiswch y grŵp(iau) penodol o bobl y mae eich prosiect wedi'i anelu atynt")},
		},
		{
			Name:  "beneficiariesGroupsAge",
			Type:  field.TypeCheckbox,
			Label: i18n.Bilingual("Ages", "Oedrannau"),
			Options: []field.Option{
				option("0-12", "0–12", "0–12"),
				option("13-24", "13–24", "13–24"),
				option("25-64", "25–64", "25–64"),
				option("65+", "65+", "65+"),
			},
			ShouldShow: field.AnyOf("beneficiariesGroups", "age"),
			Required:   field.AnyOf("beneficiariesGroups", "age"),
			Messages:   []field.Message{base("Select the age group(s) of the people that will benefit", "Dewiswch grŵp(iau) oedran y bobl a fydd yn elwa")},
		},
		{
			Name:  "beneficiariesWelshLanguage",
			Type:  field.TypeRadio,
			Label: i18n.Bilingual("How many of the people who will benefit from your project speak Welsh?", "Faint o'r bobl a fydd yn elwa o'ch prosiect sy'n siarad Cymraeg?"),
			Options: []field.Option{
				option("all", "All", "Pawb"),
				option("more-than-half", "More than half", "Mwy na hanner"),
				option("less-than-half", "Less than half", "Llai na hanner"),
				option("none", "None", "Neb"),
			},
			ShouldShow: field.Equals("projectCountry", CountryWales),
			Required:   field.Equals("projectCountry", CountryWales),
			Messages:   []field.Message{base("Select the amount of people who speak Welsh", "Dewiswch y nifer o bobl sy'n siarad Cymraeg")},
		},
		{
			Name:  "beneficiariesNorthernIrelandCommunity",
			Type:  field.TypeRadio,
			Label: i18n.Bilingual("Which community do the people who will benefit from your project belong to?", "Pa gymuned mae'r bobl a fydd yn elwa o'ch prosiect yn perthyn iddi?"),
			Options: []field.Option{
				option("mainly-catholic", "Mainly Catholic", "Catholig yn bennaf"),
				option("mainly-protestant", "Mainly Protestant", "Protestannaidd yn bennaf"),
				option("both-catholic-and-protestant", "Both Catholic and Protestant", "Catholig a Phrotestannaidd"),
				option("neither-catholic-or-protestant", "Neither Catholic or Protestant", "Ddim yn Gatholig na Phrotestannaidd"),
			},
			ShouldShow: field.Equals("projectCountry", CountryNorthernIreland),
			Required:   field.Equals("projectCountry", CountryNorthernIreland),
			Messages:   []field.Message{base("Select the community that the people who will benefit belong to", "Dewiswch y gymuned y mae'r bobl a fydd yn elwa yn perthyn iddi")},
		},
	}
}

func organisationFields() field.Catalog {
	return field.Catalog{
		{
			Name:     "organisationLegalName",
			Type:     field.TypeText,
			Label:    i18n.Bilingual("What is the full legal name of your organisation?", "Beth yw enw cyfreithiol llawn eich sefydliad?"),
			Messages: []field.Message{base("Enter the full legal name of the organisation", "Rhowch enw cyfreithiol llawn y sefydliad")},
			Required: field.Always,
		},
		{
			Name:   "organisationTradingName",
			Type:   field.TypeText,
			Label:  i18n.Bilingual("Does your organisation use a different name in your day-to-day work?", "A yw eich sefydliad yn defnyddio enw gwahanol yn eich gwaith o ddydd i ddydd?"),
			Schema: rules.String().Max(255).DifferentFrom("organisationLegalName"),
			Messages: []field.Message{
				typed(rules.TypeInvalid, "Trading name must not be the same as legal name", "Ni ddylai'r enw masnachu fod yr un peth â'r enw cyfreithiol"),
			},
		},
		{
			Name:     "organisationAddress",
			Type:     field.TypeAddress,
			Label:    i18n.Bilingual("What is the main or registered address of your organisation?", "Beth yw prif gyfeiriad neu gyfeiriad cofrestredig eich sefydliad?"),
			Messages: addressMessages(),
			Required: field.Always,
		},
		{
			Name:  "organisationType",
			Type:  field.TypeRadio,
			Label: i18n.Bilingual("What type of organisation are you?", "Pa fath o sefydliad ydych chi?"),
			Options: []field.Option{
				option(OrgUnregistered, "Unregistered voluntary or community organisation", "Sefydliad gwirfoddol neu gymunedol anghofrestredig"),
				option(OrgCharity, "Registered charity (unincorporated)", "Elusen gofrestredig (anghorfforedig)"),
				option(OrgCIO, "Charitable incorporated organisation (CIO)", "Sefydliad corfforedig elusennol (SCE)"),
				option(OrgNotForProfit, "Not-for-profit company", "Cwmni nid-er-elw"),
				option(OrgSchool, "School", "Ysgol"),
				option(OrgCollege, "College or University", "Coleg neu Brifysgol"),
				option(OrgStatutoryBody, "Statutory body", "Corff statudol"),
				option(OrgFaithGroup, "Faith-based group", "Grŵp yn seiliedig ar ffydd"),
			},
			Messages: []field.Message{base("Select a type of organisation", "Dewiswch fath o sefydliad")},
			Required: field.Always,
		},
		{
			Name:       "companyNumber",
			Type:       field.TypeText,
			Label:      i18n.Bilingual("Companies House number", "Rhif Tŷ'r Cwmnïau"),
			ShouldShow: requiresCompanyNumber,
			Required:   requiresCompanyNumber,
			Messages:   []field.Message{base("Enter your organisation's Companies House number", "Rhowch rif Tŷ'r Cwmnïau eich sefydliad")},
		},
		{
			Name:       "charityNumber",
			Type:       field.TypeText,
			Label:      i18n.Bilingual("Charity registration number", "Rhif cofrestru elusen"),
			ShouldShow: requiresCharityNumber,
			Required:   requiresCharityNumber,
			Messages:   []field.Message{base("Enter your organisation's charity number", "Rhowch rif elusen eich sefydliad")},
		},
		{
			Name:       "educationNumber",
			Type:       field.TypeText,
			Label:      i18n.Bilingual("Department for Education number", "Rhif yr Adran Addysg"),
			ShouldShow: requiresEducationNo,
			Required:   requiresEducationNo,
			Messages:   []field.Message{base("Enter your organisation's Department for Education number", "Rhowch rif Adran Addysg eich sefydliad")},
		},
		{
			Name:  "accountingYearDate",
			Type:  field.TypeDayMonth,
			Label: i18n.Bilingual("What is your accounting year end date?", "Beth yw dyddiad diwedd eich blwyddyn ariannol?"),
			Messages: []field.Message{
				base("Enter a day and month", "Rhowch ddiwrnod a mis"),
				typed(rules.TypeDayMonthInvalid, "Enter a real day and month", "Rhowch ddiwrnod a mis go iawn"),
			},
			Required: field.Always,
		},
		{
			Name:  "totalIncomeYear",
			Type:  field.TypeCurrency,
			Label: i18n.Bilingual("What is your total income for the year?", "Beth yw cyfanswm eich incwm am y flwyddyn?"),
			Messages: []field.Message{
				base("Enter a total income for the year", "Rhowch gyfanswm incwm am y flwyddyn"),
				typed(rules.TypeNumberBase, "Total income must be a real number", "Rhaid i'r cyfanswm incwm fod yn rif go iawn"),
			},
			Required: field.Always,
		},
	}
}

func seniorRoles(data answers.Set) []field.Option {
	switch data.String("organisationType") {
	case OrgSchool, OrgCollege:
		return []field.Option{
			option("head-teacher", "Head Teacher", "Pennaeth"),
			option("chancellor", "Chancellor", "Canghellor"),
			option("vice-chancellor", "Vice-chancellor", "Is-ganghellor"),
		}
	case OrgStatutoryBody:
		return []field.Option{
			option("parish-clerk", "Parish Clerk", "Clerc y Plwyf"),
			option("chief-executive", "Chief Executive", "Prif Weithredwr"),
		}
	default:
		return []field.Option{
			option("chair", "Chair", "Cadeirydd"),
			option("vice-chair", "Vice-chair", "Is-gadeirydd"),
			option("secretary", "Secretary", "Ysgrifennydd"),
			option("treasurer", "Treasurer", "Trysorydd"),
			option("trustee", "Trustee", "Ymddiriedolwr"),
		}
	}
}

// contactFields builds the catalog for one contact. Personal details are
// asked only of organisations that are not schools or statutory bodies; for
// those they are stripped even when an old answer is still present.
func contactFields(prefix string, minAge int, extra ...field.Definition) field.Catalog {
	name := func(suffix string) string { return prefix + suffix }
	email := rules.Email().Required()
	emailCopy := emailMessages()
	if prefix == "mainContact" {
		email = email.DifferentFrom("seniorContactEmail")
		emailCopy = append(emailCopy, typed(rules.TypeInvalid, "Main contact email address must be different from the senior contact's email address", "Rhaid i gyfeiriad e-bost y prif gyswllt fod yn wahanol i gyfeiriad e-bost yr uwch gyswllt"))
	}

	catalog := field.Catalog{
		{
			Name:     name("Name"),
			Type:     field.TypeFullName,
			Label:    i18n.Bilingual("Full name", "Enw llawn"),
			Messages: nameMessages(),
			Required: field.Always,
		},
		{
			Name:       name("DateOfBirth"),
			Type:       field.TypeDate,
			Label:      i18n.Bilingual("Date of birth", "Dyddiad geni"),
			SchemaFunc: rules.When(noPersonalDetails.Holds, rules.DateParts().Strip(), rules.DateParts().MinAge(minAge).PastOnly().Required()),
			Messages:   dobMessages(),
			ShouldShow: personalDetails,
			Required:   personalDetails,
		},
		{
			Name:       name("Address"),
			Type:       field.TypeAddress,
			Label:      i18n.Bilingual("Home address", "Cyfeiriad cartref"),
			SchemaFunc: rules.When(noPersonalDetails.Holds, rules.Address().Strip(), rules.Address().Required()),
			Messages:   addressMessages(),
			ShouldShow: personalDetails,
			Required:   personalDetails,
		},
		{
			Name:       name("AddressHistory"),
			Type:       field.TypeAddressHistory,
			Label:      i18n.Bilingual("Have they lived at their home address for the last three years?", "A ydynt wedi byw yn eu cyfeiriad cartref am y tair blynedd diwethaf?"),
			SchemaFunc: rules.When(noPersonalDetails.Holds, rules.AddressHistory().Strip(), rules.AddressHistory().Required()),
			Messages:   addressHistoryMessages(),
			ShouldShow: personalDetails,
			Required:   personalDetails,
		},
		{
			Name:     name("Email"),
			Type:     field.TypeEmail,
			Label:    i18n.Bilingual("Email", "E-bost"),
			Schema:   email,
			Messages: emailCopy,
			Required: field.Always,
		},
		{
			Name:     name("Phone"),
			Type:     field.TypeTel,
			Label:    i18n.Bilingual("Telephone number", "Rhif ffôn"),
			Messages: phoneMessages(),
			Required: field.Always,
		},
	}
	catalog = append(catalog, extra...)
	for i := range catalog {
		if hook := contactSubmission(catalog[i]); hook != nil {
			catalog[i].Submission = hook
		}
	}
	return catalog
}

// contactSubmission flattens full names into first and last name keys.
func contactSubmission(fd field.Definition) func(any) map[string]any {
	if fd.Type != field.TypeFullName {
		return nil
	}
	return func(value any) map[string]any {
		parts, _ := value.(map[string]any)
		return map[string]any{
			fd.Name + "FirstName": parts["firstName"],
			fd.Name + "LastName":  parts["lastName"],
		}
	}
}

func seniorContactFields() field.Catalog {
	role := field.Definition{
		Name:        "seniorContactRole",
		Type:        field.TypeRadio,
		Label:       i18n.Bilingual("Role", "Rôl"),
		OptionsFunc: seniorRoles,
		Messages:    []field.Message{base("Select a role", "Dewiswch rôl")},
		Required:    field.Always,
	}
	return contactFields("seniorContact", 18, role)
}

func mainContactFields() field.Catalog {
	return contactFields("mainContact", 16)
}

func bankFields() field.Catalog {
	return field.Catalog{
		{
			Name:     "bankAccountName",
			Type:     field.TypeText,
			Label:    i18n.Bilingual("Tell us the name of your organisation - as it appears on the bank statement", "Dywedwch wrthym enw eich sefydliad - fel mae'n ymddangos ar eich cyfriflen banc"),
			Messages: []field.Message{base("Enter the name on the bank account", "Rhowch yr enw ar y cyfrif banc")},
			Required: field.Always,
		},
		{
			Name:       "bankSortCode",
			Type:       field.TypeText,
			Label:      i18n.Bilingual("Sort code", "Côd didoli"),
			Schema:     rules.String().Pattern(sortCodePattern).Required(),
			Submission: normaliseSortCode,
			Messages: []field.Message{
				base("Enter a sort code", "Rhowch gôd didoli"),
				typed(rules.TypeStringRegex, "Sort code must be six digits long", "Rhaid i'r côd didoli fod yn chwe digid"),
				typed(preflightFailure, "Check the account details are correct", "Gwiriwch fod manylion y cyfrif yn gywir"),
			},
			Required: field.Always,
		},
		{
			Name:   "bankAccountNumber",
			Type:   field.TypeText,
			Label:  i18n.Bilingual("Account number", "Rhif cyfrif"),
			Schema: rules.String().Pattern(accountNumberPattern).Required(),
			Messages: []field.Message{
				base("Enter an account number", "Rhowch rif cyfrif"),
				typed(rules.TypeStringRegex, "Enter a valid length account number", "Rhowch rif cyfrif o hyd dilys"),
				typed(preflightFailure, "Check the account details are correct", "Gwiriwch fod manylion y cyfrif yn gywir"),
			},
			Required: field.Always,
		},
		{
			Name:  "buildingSocietyNumber",
			Type:  field.TypeText,
			Label: i18n.Bilingual("Building society number (if you have one)", "Rhif cymdeithas adeiladu (os oes gennych un)"),
		},
		{
			Name:   "bankStatement",
			Type:   field.TypeFile,
			Label:  i18n.Bilingual("Upload a bank statement", "Uwch lwytho cyfriflen banc"),
			Schema: rules.File(maxStatementBytes, "application/pdf", "image/jpeg", "image/png").Required(),
			Messages: []field.Message{
				base("Provide a bank statement", "Darparwch gyfriflen banc"),
				typed(rules.TypeFileSize, "Please upload a file below 12MB", "Uwch lwythwch ffeil o dan 12MB"),
				typed(rules.TypeFileType, "Please upload a file in one of these formats: PDF, JPEG, PNG", "Uwch lwythwch ffeil yn un o'r fformatau hyn: PDF, JPEG, PNG"),
				typed(rules.TypeFileUpload, "There was a problem uploading your bank statement", "Roedd problem wrth uwch lwytho eich cyfriflen banc"),
			},
			Required: field.Always,
		},
	}
}

func termsFields() field.Catalog {
	agree := []field.Option{option("yes", "I agree", "Rwy'n cytuno")}
	agreement := func(name, en, cy string) field.Definition {
		return field.Definition{
			Name:     name,
			Type:     field.TypeCheckbox,
			Label:    i18n.Bilingual(en, cy),
			Options:  agree,
			Messages: []field.Message{base("You must confirm that you agree", "Rhaid i chi gadarnhau eich bod yn cytuno")},
			Required: field.Always,
		}
	}
	return field.Catalog{
		agreement("termsAgreement1", "You have been authorised by your organisation to apply", "Rydych wedi cael eich awdurdodi gan eich sefydliad i ymgeisio"),
		agreement("termsAgreement2", "The information you have provided is true and complete", "Mae'r wybodaeth a ddarparwyd gennych yn wir ac yn gyflawn"),
		{
			Name:     "termsPersonName",
			Type:     field.TypeText,
			Label:    i18n.Bilingual("Full name of person completing this form", "Enw llawn y person sy'n cwblhau'r ffurflen hon"),
			Messages: []field.Message{base("Enter the full name of the person completing this form", "Rhowch enw llawn y person sy'n cwblhau'r ffurflen hon")},
			Required: field.Always,
		},
		{
			Name:     "termsPersonPosition",
			Type:     field.TypeText,
			Label:    i18n.Bilingual("Position in organisation", "Safle yn y sefydliad"),
			Messages: []field.Message{base("Enter the position of the person completing this form", "Rhowch safle'r person sy'n cwblhau'r ffurflen hon")},
			Required: field.Always,
		},
	}
}

// normaliseSortCode keeps digits only in the submission payload.
func normaliseSortCode(value any) map[string]any {
	text, _ := value.(string)
	return map[string]any{"bankSortCode": strings.NewReplacer("-", "", " ", "").Replace(text)}
}
