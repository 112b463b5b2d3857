// internal/service/analysis/tables.go

package analysis

import (
	"sort"
	"strings"
)

// CompanyInfo maps a company mention to its market identity.
type CompanyInfo struct {
	Ticker string
	Domain string
	Name   string
}

// companyTickers maps lowercase company mentions to market identities.
// Keys are matched as substrings of the classifier's primary_company value.
var companyTickers = map[string]CompanyInfo{
	// Big tech
	"amazon":    {Ticker: "AMZN", Domain: "amazon.com", Name: "Amazon.com Inc."},
	"aws":       {Ticker: "AMZN", Domain: "amazon.com", Name: "Amazon.com Inc."},
	"google":    {Ticker: "GOOGL", Domain: "google.com", Name: "Alphabet Inc."},
	"alphabet":  {Ticker: "GOOGL", Domain: "google.com", Name: "Alphabet Inc."},
	"microsoft": {Ticker: "MSFT", Domain: "microsoft.com", Name: "Microsoft Corporation"},
	"azure":     {Ticker: "MSFT", Domain: "microsoft.com", Name: "Microsoft Corporation"},
	"apple":     {Ticker: "AAPL", Domain: "apple.com", Name: "Apple Inc."},
	"meta":      {Ticker: "META", Domain: "meta.com", Name: "Meta Platforms Inc."},
	"facebook":  {Ticker: "META", Domain: "meta.com", Name: "Meta Platforms Inc."},
	"nvidia":    {Ticker: "NVDA", Domain: "nvidia.com", Name: "NVIDIA Corporation"},
	"intel":     {Ticker: "INTC", Domain: "intel.com", Name: "Intel Corporation"},
	"amd":       {Ticker: "AMD", Domain: "amd.com", Name: "Advanced Micro Devices"},
	"tesla":     {Ticker: "TSLA", Domain: "tesla.com", Name: "Tesla Inc."},
	"oracle":    {Ticker: "ORCL", Domain: "oracle.com", Name: "Oracle Corporation"},
	"ibm":       {Ticker: "IBM", Domain: "ibm.com", Name: "IBM Corporation"},
	"salesforce": {Ticker: "CRM", Domain: "salesforce.com", Name: "Salesforce Inc."},
	"adobe":     {Ticker: "ADBE", Domain: "adobe.com", Name: "Adobe Inc."},
	"vmware":    {Ticker: "VMW", Domain: "vmware.com", Name: "VMware Inc."},
	"broadcom":  {Ticker: "AVGO", Domain: "broadcom.com", Name: "Broadcom Inc."},

	// Cybersecurity
	"crowdstrike": {Ticker: "CRWD", Domain: "crowdstrike.com", Name: "CrowdStrike Holdings"},
	"cloudflare":  {Ticker: "NET", Domain: "cloudflare.com", Name: "Cloudflare Inc."},
	"palo alto":   {Ticker: "PANW", Domain: "paloaltonetworks.com", Name: "Palo Alto Networks"},
	"paloalto":    {Ticker: "PANW", Domain: "paloaltonetworks.com", Name: "Palo Alto Networks"},
	"fortinet":    {Ticker: "FTNT", Domain: "fortinet.com", Name: "Fortinet Inc."},
	"okta":        {Ticker: "OKTA", Domain: "okta.com", Name: "Okta Inc."},
	"zscaler":     {Ticker: "ZS", Domain: "zscaler.com", Name: "Zscaler Inc."},
	"sentinelone": {Ticker: "S", Domain: "sentinelone.com", Name: "SentinelOne Inc."},
	"cisco":       {Ticker: "CSCO", Domain: "cisco.com", Name: "Cisco Systems Inc."},
	"splunk":      {Ticker: "SPLK", Domain: "splunk.com", Name: "Splunk Inc."},

	// Social and communication
	"twitter":  {Ticker: "X", Domain: "x.com", Name: "X Corp"},
	"snap":     {Ticker: "SNAP", Domain: "snap.com", Name: "Snap Inc."},
	"snapchat": {Ticker: "SNAP", Domain: "snap.com", Name: "Snap Inc."},
	"discord":  {Domain: "discord.com", Name: "Discord Inc."},
	"zoom":     {Ticker: "ZM", Domain: "zoom.us", Name: "Zoom Video Communications"},
	"slack":    {Ticker: "CRM", Domain: "slack.com", Name: "Slack (Salesforce)"},

	// Crypto and finance
	"coinbase": {Ticker: "COIN", Domain: "coinbase.com", Name: "Coinbase Global Inc."},
	"paypal":   {Ticker: "PYPL", Domain: "paypal.com", Name: "PayPal Holdings Inc."},
	"stripe":   {Domain: "stripe.com", Name: "Stripe Inc."},

	// Others
	"samsung":  {Ticker: "005930.KS", Domain: "samsung.com", Name: "Samsung Electronics"},
	"qualcomm": {Ticker: "QCOM", Domain: "qualcomm.com", Name: "Qualcomm Inc."},
	"dell":     {Ticker: "DELL", Domain: "dell.com", Name: "Dell Technologies"},
	"hp":       {Ticker: "HPQ", Domain: "hp.com", Name: "HP Inc."},
	"lenovo":   {Ticker: "0992.HK", Domain: "lenovo.com", Name: "Lenovo Group"},
}

// countryNames maps ISO country codes to display names for geo impact.
var countryNames = map[string]string{
	"US": "United States",
	"GB": "United Kingdom",
	"DE": "Germany",
	"FR": "France",
	"CN": "China",
	"RU": "Russia",
	"JP": "Japan",
	"KR": "South Korea",
	"IN": "India",
	"BR": "Brazil",
	"AU": "Australia",
	"CA": "Canada",
	"IL": "Israel",
	"NL": "Netherlands",
	"SG": "Singapore",
	"AE": "United Arab Emirates",
	"IR": "Iran",
	"KP": "North Korea",
}

// knownTrendTerms are high-signal terms worth searching for when they appear
// in an article title. Checked in order so results stay deterministic.
var knownTrendTerms = []string{
	"phishing", "ransomware", "malware", "hacking", "cybersecurity", "data breach",
	"vulnerability", "exploit", "zero-day", "microsoft", "google", "apple", "android",
	"ios", "chrome", "windows", "linux", "bitcoin", "cryptocurrency", "ai", "chatgpt",
	"openai", "hacker", "privacy", "encryption", "vpn", "firewall", "antivirus",
	"password", "authentication", "security", "cyber attack", "threat", "botnet",
	"crowdstrike", "cloudflare", "aws", "azure", "nvidia", "meta", "facebook",
}

// categorySeedTerms maps a classifier category to a search term used when no
// better trend seed is available.
var categorySeedTerms = map[string]string{
	"Phishing":              "Phishing",
	"Malware":               "Malware",
	"Ransomware":            "Ransomware",
	"Vulnerability":         "Security Vulnerability",
	"Data Breach":           "Data Breach",
	"AI & Machine Learning": "AI Security",
	"Mobile Security":       "Mobile Security",
}

// techVocabulary is the recognized tech-stack vocabulary.
var techVocabulary = []string{
	"python", "javascript", "java", "c++", "rust", "go", "php", "ruby",
	"aws", "azure", "gcp", "docker", "kubernetes", "linux", "windows",
	"android", "ios", "react", "angular", "vue", "node.js", "django",
	"flask", "spring", "postgresql", "mysql", "mongodb", "redis",
	"elasticsearch", "kafka", "rabbitmq", "tensorflow", "pytorch",
}

// Category groups articles by topic via keyword matching. Kept for the
// categories endpoint alongside the classifier's simplified set.
type Category struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Keywords []string `json:"keywords"`
}

// ClassifierCategories is the simplified set the classifier chooses from.
var ClassifierCategories = []string{"Security", "Product Launch", "Legal", "Market", "AI", "DevOps"}

// LegacyCategories is the full keyword-based taxonomy.
var LegacyCategories = []Category{
	{ID: "malware", Name: "Malware", Keywords: []string{"malware", "virus", "trojan", "worm", "spyware", "adware", "rootkit", "keylogger", "botnet", "backdoor"}},
	{ID: "vulnerability", Name: "Vulnerability", Keywords: []string{"vulnerability", "cve", "zero-day", "0-day", "exploit", "bug", "flaw", "patch", "security hole", "rce", "remote code execution"}},
	{ID: "data_breach", Name: "Data Breach", Keywords: []string{"data breach", "leak", "exposed", "stolen data", "compromised", "data theft", "records exposed", "personal data"}},
	{ID: "ransomware", Name: "Ransomware", Keywords: []string{"ransomware", "ransom", "encrypt", "decryptor", "extortion", "lockbit", "blackcat", "alphv", "conti"}},
	{ID: "phishing", Name: "Phishing", Keywords: []string{"phishing", "social engineering", "scam", "fraud", "fake", "impersonation", "credential theft", "bec", "business email"}},
	{ID: "apt", Name: "APT & Nation-State", Keywords: []string{"apt", "nation-state", "state-sponsored", "espionage", "cyber espionage", "threat actor", "campaign", "lazarus", "cozy bear", "fancy bear"}},
	{ID: "privacy", Name: "Privacy", Keywords: []string{"privacy", "gdpr", "data protection", "surveillance", "tracking", "cookies", "consent", "personal information"}},
	{ID: "cloud", Name: "Cloud Security", Keywords: []string{"cloud", "aws", "azure", "gcp", "kubernetes", "docker", "container", "saas", "iaas", "paas", "misconfiguration"}},
	{ID: "mobile", Name: "Mobile Security", Keywords: []string{"android", "ios", "mobile", "smartphone", "app", "play store", "app store", "mobile malware"}},
	{ID: "iot", Name: "IoT & Hardware", Keywords: []string{"iot", "internet of things", "smart device", "firmware", "hardware", "embedded", "router", "camera", "sensor"}},
	{ID: "crypto", Name: "Cryptocurrency", Keywords: []string{"crypto", "cryptocurrency", "bitcoin", "ethereum", "blockchain", "wallet", "defi", "nft", "exchange hack"}},
	{ID: "ai", Name: "AI & Machine Learning", Keywords: []string{"ai", "artificial intelligence", "machine learning", "llm", "chatgpt", "gpt", "deep learning", "neural", "model"}},
	{ID: "regulation", Name: "Law & Regulation", Keywords: []string{"law", "regulation", "compliance", "legal", "court", "arrest", "indictment", "sanctions", "fine", "penalty", "fbi", "doj"}},
	{ID: "enterprise", Name: "Enterprise Security", Keywords: []string{"enterprise", "corporate", "business", "organization", "company", "siem", "soc", "incident response", "threat detection"}},
	{ID: "authentication", Name: "Authentication", Keywords: []string{"authentication", "password", "mfa", "2fa", "passkey", "biometric", "login", "sso", "identity", "oauth"}},
}

// LookupCompany resolves a classifier-supplied company mention against the
// ticker table. Exact key matches win; otherwise keys of 3+ characters are
// matched as substrings so "Microsoft Corp" still hits "microsoft". Short
// keys like "x" and "hp" only match exactly.
func LookupCompany(mention string) (CompanyInfo, bool) {
	lower := strings.ToLower(strings.TrimSpace(mention))
	if lower == "" {
		return CompanyInfo{}, false
	}
	if info, ok := companyTickers[lower]; ok {
		return info, true
	}

	keys := make([]string, 0, len(companyTickers))
	for key := range companyTickers {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if len(key) >= 3 && strings.Contains(lower, key) {
			return companyTickers[key], true
		}
	}
	return CompanyInfo{}, false
}
