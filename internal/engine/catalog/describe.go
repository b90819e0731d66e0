package catalog

import (
	"fmt"
	"strings"
)

// describeAssessment generates a description from the assessment name when
// the page had none worth keeping. One branch per technology family.
func describeAssessment(name string) string {
	n := strings.ToLower(name)

	switch {
	// Programming and technical
	case strings.Contains(n, "python"):
		return "Multi-choice assessment evaluating Python programming proficiency including core language features, data structures, object-oriented programming concepts, standard libraries, and database integration. For software development roles requiring Python expertise."
	case strings.Contains(n, "java") && !strings.Contains(n, "javascript"):
		switch {
		case strings.Contains(n, "entry"):
			return "Entry-level Java programming assessment covering fundamental concepts including basic syntax, object-oriented principles, exception handling, and file I/O operations. For junior Java developer positions."
		case strings.Contains(n, "advanced"):
			return "Advanced Java development assessment measuring expertise in complex programming concepts including multithreading, generics, advanced collections, and design patterns. For senior Java roles."
		default:
			return "Comprehensive Java programming assessment evaluating knowledge of Java features including lambda expressions, stream API, collections framework, and modern development practices. For Java developer positions."
		}
	case strings.Contains(n, "javascript") || strings.Contains(n, " js"):
		return "JavaScript proficiency assessment covering ES6+ features, asynchronous programming, DOM manipulation, event handling, and modern JavaScript development practices. For front-end and full-stack developers."
	case strings.Contains(n, "automata"):
		switch {
		case strings.Contains(n, "fix"):
			return "Hands-on coding assessment testing debugging skills through identifying and fixing code defects in multiple programming languages. For software developer roles."
		case strings.Contains(n, "sql"):
			return "Practical SQL coding assessment evaluating ability to write complex queries, perform database operations, and optimize query performance. For database developers."
		default:
			return "Automated coding assessment measuring practical programming skills through hands-on coding challenges and algorithm implementation. For software developers."
		}
	case strings.Contains(n, "sql"):
		return "SQL database assessment measuring query writing proficiency, database design principles, joins, filtering, aggregation techniques, and query optimization. For database developers and data analysts."
	case strings.Contains(n, "c++") || strings.Contains(n, "cpp"):
		return "C++ programming assessment evaluating knowledge of object-oriented programming, memory management, templates, STL, and modern C++ features. For systems and application developers."
	case strings.Contains(n, "c#") || strings.Contains(n, "csharp"):
		return "C# programming assessment measuring proficiency in .NET framework, object-oriented concepts, LINQ, async programming, and modern C# features. For .NET developers."
	case strings.Contains(n, ".net"):
		return ".NET framework assessment evaluating knowledge of ASP.NET, MVC patterns, web services, Entity Framework, and modern .NET development practices. For .NET application developers."

	// Web development
	case strings.Contains(n, "html") || strings.Contains(n, "css"):
		return "Web development assessment evaluating HTML5 markup, CSS3 styling, responsive design principles, cross-browser compatibility, and modern front-end practices. For web developers and UI developers."
	case strings.Contains(n, "selenium"):
		return "Selenium test automation assessment evaluating knowledge of WebDriver architecture, test frameworks, element locators, wait mechanisms, and automation best practices. For QA automation engineers."
	case strings.Contains(n, "drupal"):
		return "Drupal CMS assessment measuring knowledge of Drupal architecture, content management, module development, theming, and site administration. For Drupal developers and CMS administrators."

	// Data and analytics
	case strings.Contains(n, "tableau"):
		return "Tableau data visualization assessment evaluating skills in dashboard creation, interactive visualizations, calculations, filters, and data analysis using Tableau. For data analysts and BI professionals."
	case strings.Contains(n, "excel"):
		if strings.Contains(n, "essentials") {
			return "Microsoft Excel fundamentals assessment covering basic formulas, data entry, cell formatting, simple calculations, and essential spreadsheet operations. For administrative positions."
		}
		return "Advanced Microsoft Excel assessment measuring proficiency in complex formulas, data analysis tools, pivot tables, VLOOKUP, macros, and advanced data manipulation. For analyst roles."
	case strings.Contains(n, "data warehousing"):
		return "Data warehousing assessment evaluating understanding of ETL processes, dimensional modeling, star/snowflake schemas, OLAP systems, and data warehouse architecture. For data engineers and architects."

	// Testing and QA
	case strings.Contains(n, "testing") || strings.Contains(n, "qa"):
		if strings.Contains(n, "manual") {
			return "Manual software testing assessment measuring understanding of testing lifecycle, test case design, defect management, testing methodologies, and QA principles. For QA testers."
		}
		return "Software testing assessment covering testing methodologies, test automation concepts, quality assurance practices, and testing tools. For QA professionals."

	// Personality and behaviour
	case strings.Contains(n, "opq") || strings.Contains(n, "occupational personality"):
		return "Comprehensive occupational personality questionnaire measuring 32 behavioral dimensions across relationships, thinking styles, feelings, and work approaches. Industry-leading personality assessment."
	case strings.Contains(n, "leadership"):
		if strings.Contains(n, "report") {
			return "Leadership assessment report analyzing leadership competencies, management style, strategic thinking, decision-making approaches, and influence skills. For management positions."
		}
		return "Leadership evaluation measuring leadership capabilities, team management skills, strategic thinking, and executive presence. For leadership and management roles."
	case strings.Contains(n, "team types"):
		return "Team dynamics assessment examining preferred team roles, collaborative approaches, leadership flexibility, and contribution styles within teams. Based on personality profiling."

	// Cognitive ability
	case strings.Contains(n, "verify") || strings.Contains(n, "reasoning") || strings.Contains(n, "ability"):
		switch {
		case strings.Contains(n, "verbal"):
			return "Verbal reasoning assessment measuring reading comprehension, critical analysis, logical inference, argument evaluation, and text-based problem-solving. For professional roles."
		case strings.Contains(n, "numerical"):
			return "Numerical reasoning assessment evaluating ability to interpret numerical data, graphs, statistics, perform calculations, and solve quantitative problems. For analytical roles."
		case strings.Contains(n, "inductive"):
			return "Inductive reasoning assessment measuring pattern recognition, logical thinking, abstract reasoning, and capacity to generalize principles. For problem-solving roles."
		default:
			return "Cognitive ability assessment measuring reasoning skills and mental aptitude relevant to workplace performance. For professional competency evaluation."
		}

	// Communication and language
	case strings.Contains(n, "english"):
		switch {
		case strings.Contains(n, "written"):
			return "Written English proficiency assessment evaluating grammar, spelling, punctuation, sentence structure, and professional writing quality. For roles requiring written communication."
		case strings.Contains(n, "spoken"), strings.Contains(n, "svar"):
			return "Spoken English evaluation measuring pronunciation, fluency, intonation, vocabulary, and verbal communication effectiveness. For customer-facing roles."
		default:
			return "English comprehension assessment measuring vocabulary, reading comprehension, grammar understanding, and language proficiency. For English language competency."
		}
	case strings.Contains(n, "communication"):
		return "Communication skills assessment measuring verbal and non-verbal effectiveness, active listening, professional interaction, and workplace communication abilities. For collaborative roles."
	case strings.Contains(n, "writing") || strings.Contains(n, "email"):
		return "Business writing assessment evaluating professional correspondence, email communication, persuasive writing, grammar, and effective written communication. For sales and professional roles."

	// Marketing and digital
	case strings.Contains(n, "marketing"):
		return "Marketing knowledge assessment covering marketing principles, consumer behavior, brand management, digital channels, market research, and campaign management. For marketing professionals."
	case strings.Contains(n, "seo") || strings.Contains(n, "search engine"):
		return "Search Engine Optimization assessment evaluating SEO fundamentals, keyword research, on-page/off-page optimization, link building, and search algorithms. For SEO specialists."
	case strings.Contains(n, "advertising") || strings.Contains(n, "adwords"):
		return "Digital advertising assessment measuring expertise in online advertising platforms, campaign management, bid strategies, performance metrics, and ROI optimization. For digital marketers."

	// Office and administrative
	case strings.Contains(n, "computer literacy"):
		return "Basic computer literacy assessment evaluating fundamental computer skills including OS navigation, file management, applications, internet, and email operations. For entry-level positions."
	case strings.Contains(n, "accounting") || strings.Contains(n, "bookkeeping") || strings.Contains(n, "accounts"):
		return "Accounting fundamentals assessment covering bookkeeping principles, financial transactions, ledger management, and basic accounting practices. For accounting and finance roles."

	case strings.Contains(n, "global skills"):
		return "Comprehensive global skills assessment evaluating 96 discrete behavioral dimensions across cognitive abilities, personality traits, and professional competencies. For diverse roles worldwide."

	default:
		return fmt.Sprintf("Professional assessment measuring knowledge, skills, and competencies relevant to %s positions. Evaluation tool designed to predict job performance and identify qualified candidates.", name)
	}
}

// estimateDuration guesses minutes by assessment category when the page
// states none.
func estimateDuration(name string, testTypes []string) int {
	n := strings.ToLower(name)

	if contains(testTypes, TypePersonality) {
		if strings.Contains(n, "leadership") && strings.Contains(n, "report") {
			return 45
		}
		return 25
	}

	if strings.Contains(n, "automata") || strings.Contains(n, "coding") {
		return 45
	}
	if strings.Contains(n, "global") {
		return 90
	}
	if strings.Contains(n, "verify") || strings.Contains(n, "reasoning") {
		if strings.Contains(n, "verbal") || strings.Contains(n, "numerical") {
			return 18
		}
		return 25
	}
	if strings.Contains(n, "advanced") {
		return 45
	}
	if strings.Contains(n, "entry") || strings.Contains(n, "essentials") || strings.Contains(n, "basic") {
		return 25
	}
	return 30
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

// fallbackTestURLs is the known individual-test list used when the crawl
// comes back thin (layout changes, blocked pages).
func fallbackTestURLs() []string {
	base := siteBase + viewPathMarker

	slugs := []string{
		// Programming languages
		"python-new/", "java-8-new/", "core-java-entry-level-new/", "core-java-advanced-level-new/",
		"javascript-new/", "c-plus-plus-new/", "c-sharp-new/",

		// .NET stack
		"net-framework-4-5/", "net-mvc-new/", "net-mvvm-new/", "net-wcf-new/",
		"net-wpf-new/", "net-xaml-new/", "ado-net-new/",

		// Databases and data
		"sql-server-new/", "automata-sql-new/", "tableau-new/", "data-warehousing-concepts/",

		// Web development
		"html-css-new/", "css3-new/", "drupal-new/",

		// Office applications
		"microsoft-excel-365-new/", "microsoft-excel-365-essentials-new/",
		"microsoft-word-365-new/", "microsoft-powerpoint-365-new/",
		"microsoft-outlook-365-new/", "basic-computer-literacy-windows-10-new/",

		// Testing and QA
		"selenium-new/", "manual-testing-new/", "automata-fix-new/",

		// Marketing and digital
		"marketing-new/", "digital-advertising-new/", "search-engine-optimization-new/",

		// Accounting and finance
		"accounts-payable-new/", "accounts-receivable-new/", "bookkeeping-new/",

		// Communication and language
		"interpersonal-communications/", "business-communication-adaptive/",
		"english-comprehension-new/", "written-english-v1/",
		"svar-spoken-english-indian-accent-new/", "writex-email-writing-sales-new/",

		// Personality and behaviour
		"occupational-personality-questionnaire-opq32r/", "opq-leadership-report/",
		"opq-team-types-and-leadership-styles-report/", "enterprise-leadership-report-2-0/",

		// Cognitive ability
		"verify-verbal-ability-next-generation/", "verify-numerical-ability/",
		"shl-verify-interactive-inductive-reasoning/", "shl-verify-interactive-numerical-calculation/",

		// Comprehensive
		"global-skills-assessment/",
	}

	urls := make([]string, 0, len(slugs))
	for _, s := range slugs {
		urls = append(urls, base+s)
	}
	return urls
}
