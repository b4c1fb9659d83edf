package mcpserver

// NotationContract describes the annotation notation that LLM consumers
// should follow when reading or writing Lotsawa documents.
const NotationContract = `# Lotsawa Notation Contract

A document is UTF-8 text made of stanza blocks. Each block pairs the raw
Tibetan text with an analysis section describing its words.

## Block

` + "```" + `
>>>
<raw Tibetan text, one or more lines>
>>>>
<annotation lines>
>>>>>
` + "```" + `

- ` + "`>>>`" + ` opens a block, ` + "`>>>>`" + ` separates raw text from analysis, ` + "`>>>>>`" + ` closes it.
- Blocks are separated by one blank line. Text outside blocks is not
  parsed; edits and polish keep it as written.
- A file with no markers is read as a single block of raw text.

## Annotation line

` + "```" + `
<TAB*><surface>[content]
` + "```" + `

- Leading tabs give the nesting depth. A line with one more tab than the
  previous word annotates a part of that word (compounds). At most two
  levels of words are written.
- ` + "`surface`" + ` is the exact substring of the raw text being annotated. Words
  are matched left to right, so list them in reading order.
- ` + "`content`" + ` may span several lines; the closing ` + "`]`" + ` must end a line.

## Content

` + "```" + `
[fullForm]{pos[,modifier...][,indexed(id:ID)]} [root] [definition] [; comment]
` + "```" + `

- ` + "`pos`" + ` is a tag or tag expression: ` + "`n`" + ` noun, ` + "`v`" + ` verb, ` + "`vd`" + ` volitional
  verb, ` + "`vnd`" + ` non-volitional verb, ` + "`adj`" + `, ` + "`adv`" + `, ` + "`pron`" + `, ` + "`part`" + `, ` + "`other`" + `.
  Alternatives use ` + "`|`" + ` (` + "`n|adj`" + `); a derived use uses ` + "`->`" + ` (` + "`v->n`" + `).
- Modifiers after the tag: ` + "`hon`" + ` (honorific) and tenses ` + "`past`" + `, ` + "`present`" + `,
  ` + "`future`" + `, ` + "`imp`" + `.
- ` + "`indexed(id:ID)`" + ` marks a verb merged from the verb dictionary; ID is
  alphanumeric. A bare ` + "`polished`" + ` marks a reviewed word without an ID.
- ` + "`root`" + ` is the leading run of Tibetan characters after the braces.
- ` + "`definition`" + ` is the remaining text. It must not contain ` + "`{`" + `, ` + "`}`" + ` or ` + "`;`" + `.
- Everything after ` + "`;`" + ` is a comment and is dropped on read.
- Content without ` + "`{...}`" + ` is read as a bare definition.

## Rules

1. Keep raw text and surfaces byte-identical; never normalise Tibetan spelling.
2. Do not annotate the same span twice at one level.
3. Write tags in lower case.
4. Call ` + "`parse_notation`" + ` to check a draft before saving it; warnings list
   words that could not be matched and lines that could not be read.

## Example

` + "```" + `
>>>
རྒྱ་མཚོ་ཆེན་པོ།
>>>>
<རྒྱ་མཚོ>[{n} རྒྱ་མཚོ ocean]
	<རྒྱ>[{n} རྒྱ vast]
	<མཚོ>[{n} མཚོ lake]
<ཆེན་པོ>[{adj} ཆེན great]
>>>>>
` + "```" + `
`
