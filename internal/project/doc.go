// Package project groups the datasets of one specification document under a
// name registered in the project configuration file, and loads them.
//
// The configuration file is an INI file with one section per project:
//
//	[iris]
//	specfile = /home/me/data/dictionary.yaml
package project
