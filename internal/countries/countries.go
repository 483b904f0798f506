// Package countries maps full country names to ISO 3166-1 alpha-2 codes for
// the statistics API.
package countries

import "strings"

// Code resolves a full country name to its ISO2 code. Matching is
// case-insensitive on the full name; abbreviations are not accepted here
// (the covid dialog normalizes known aliases before calling Code).
func Code(name string) (string, bool) {
	code, ok := byName[strings.ToLower(strings.TrimSpace(name))]
	return code, ok
}

var byName = map[string]string{
	"afghanistan":                      "AF",
	"albania":                          "AL",
	"algeria":                          "DZ",
	"angola":                           "AO",
	"argentina":                        "AR",
	"armenia":                          "AM",
	"australia":                        "AU",
	"austria":                          "AT",
	"azerbaijan":                       "AZ",
	"bahamas":                          "BS",
	"bahrain":                          "BH",
	"bangladesh":                       "BD",
	"belarus":                          "BY",
	"belgium":                          "BE",
	"benin":                            "BJ",
	"bolivia":                          "BO",
	"bosnia and herzegovina":           "BA",
	"botswana":                         "BW",
	"brazil":                           "BR",
	"bulgaria":                         "BG",
	"burkina faso":                     "BF",
	"burundi":                          "BI",
	"cambodia":                         "KH",
	"cameroon":                         "CM",
	"canada":                           "CA",
	"chad":                             "TD",
	"chile":                            "CL",
	"china":                            "CN",
	"colombia":                         "CO",
	"costa rica":                       "CR",
	"croatia":                          "HR",
	"cuba":                             "CU",
	"cyprus":                           "CY",
	"czechia":                          "CZ",
	"democratic republic of the congo": "CD",
	"denmark":                          "DK",
	"djibouti":                         "DJ",
	"dominican republic":               "DO",
	"ecuador":                          "EC",
	"egypt":                            "EG",
	"el salvador":                      "SV",
	"eritrea":                          "ER",
	"estonia":                          "EE",
	"eswatini":                         "SZ",
	"ethiopia":                         "ET",
	"finland":                          "FI",
	"france":                           "FR",
	"gabon":                            "GA",
	"gambia":                           "GM",
	"georgia":                          "GE",
	"germany":                          "DE",
	"ghana":                            "GH",
	"greece":                           "GR",
	"guatemala":                        "GT",
	"guinea":                           "GN",
	"haiti":                            "HT",
	"honduras":                         "HN",
	"hungary":                          "HU",
	"iceland":                          "IS",
	"india":                            "IN",
	"indonesia":                        "ID",
	"iran":                             "IR",
	"iraq":                             "IQ",
	"ireland":                          "IE",
	"israel":                           "IL",
	"italy":                            "IT",
	"ivory coast":                      "CI",
	"jamaica":                          "JM",
	"japan":                            "JP",
	"jordan":                           "JO",
	"kazakhstan":                       "KZ",
	"kenya":                            "KE",
	"kuwait":                           "KW",
	"kyrgyzstan":                       "KG",
	"laos":                             "LA",
	"latvia":                           "LV",
	"lebanon":                          "LB",
	"lesotho":                          "LS",
	"liberia":                          "LR",
	"libya":                            "LY",
	"lithuania":                        "LT",
	"luxembourg":                       "LU",
	"madagascar":                       "MG",
	"malawi":                           "MW",
	"malaysia":                         "MY",
	"mali":                             "ML",
	"malta":                            "MT",
	"mauritania":                       "MR",
	"mauritius":                        "MU",
	"mexico":                           "MX",
	"moldova":                          "MD",
	"mongolia":                         "MN",
	"montenegro":                       "ME",
	"morocco":                          "MA",
	"mozambique":                       "MZ",
	"myanmar":                          "MM",
	"namibia":                          "NA",
	"nepal":                            "NP",
	"netherlands":                      "NL",
	"new zealand":                      "NZ",
	"nicaragua":                        "NI",
	"niger":                            "NE",
	"nigeria":                          "NG",
	"north macedonia":                  "MK",
	"norway":                           "NO",
	"oman":                             "OM",
	"pakistan":                         "PK",
	"panama":                           "PA",
	"papua new guinea":                 "PG",
	"paraguay":                         "PY",
	"peru":                             "PE",
	"philippines":                      "PH",
	"poland":                           "PL",
	"portugal":                         "PT",
	"qatar":                            "QA",
	"republic of the congo":            "CG",
	"romania":                          "RO",
	"russia":                           "RU",
	"rwanda":                           "RW",
	"saudi arabia":                     "SA",
	"senegal":                          "SN",
	"serbia":                           "RS",
	"sierra leone":                     "SL",
	"singapore":                        "SG",
	"slovakia":                         "SK",
	"slovenia":                         "SI",
	"somalia":                          "SO",
	"south africa":                     "ZA",
	"south korea":                      "KR",
	"south sudan":                      "SS",
	"spain":                            "ES",
	"sri lanka":                        "LK",
	"sudan":                            "SD",
	"sweden":                           "SE",
	"switzerland":                      "CH",
	"syria":                            "SY",
	"taiwan":                           "TW",
	"tajikistan":                       "TJ",
	"tanzania":                         "TZ",
	"thailand":                         "TH",
	"togo":                             "TG",
	"tunisia":                          "TN",
	"turkey":                           "TR",
	"turkmenistan":                     "TM",
	"uganda":                           "UG",
	"ukraine":                          "UA",
	"united arab emirates":             "AE",
	"united kingdom":                   "GB",
	"united states of america":         "US",
	"uruguay":                          "UY",
	"uzbekistan":                       "UZ",
	"venezuela":                        "VE",
	"vietnam":                          "VN",
	"yemen":                            "YE",
	"zambia":                           "ZM",
	"zimbabwe":                         "ZW",
}
