// Command spellcheck crawls the pages listed in a label,target CSV, checks
// their visible text against a word list, and prints every misspelled word
// with the pages and contexts it was found in.
//
//	spellcheck run --input urls.csv --batch-size 5 --format markdown -o report.md
//
// Settings can also come from a YAML file (--config) or SPELLCHECK_* environment
// variables, e.g. SPELLCHECK_CRAWLER_ENGINE=static.
package main
