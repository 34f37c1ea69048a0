package javabuilder

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassBuilder_RendersControllerShape(t *testing.T) {
	c := NewClass("com.ymir.generated.controller", "UsersController").
		WithAnnotation("@RestController").
		WithAnnotation(`@RequestMapping("/users")`)
	c.AddImport("org.springframework.web.bind.annotation.RestController")
	c.AddImport("org.springframework.web.bind.annotation.RestController") // duplicate, should dedup

	c.AddField(NewField("UsersControllerHandler", "handler").WithAnnotation("@Autowired"))

	c.AddMethod(NewMethod("String", "getUsers").
		WithAnnotation(`@GetMapping`).
		WithBodyLine("return handler.getUsers();"))

	out := c.Render()
	assert.Contains(t, out, "package com.ymir.generated.controller;")
	assert.Contains(t, out, "@RestController")
	assert.Equal(t, 1, countOccurrences(out, "import org.springframework.web.bind.annotation.RestController;"))
	assert.Contains(t, out, "private UsersControllerHandler handler;")
	assert.Contains(t, out, "public String getUsers()")
	assert.Contains(t, out, "return handler.getUsers();")
}

func TestClassBuilder_InterfaceRendersStubsNotBodies(t *testing.T) {
	iface := NewInterface("com.ymir.generated.controller", "UsersControllerHandler")
	iface.AddMethod(NewMethod("String", "getUsers").WithBodyLine("unreachable"))

	out := iface.Render()
	assert.Contains(t, out, "public interface UsersControllerHandler")
	assert.Contains(t, out, "String getUsers();")
	assert.NotContains(t, out, "unreachable")
}

func TestClassBuilder_FieldDedupByName(t *testing.T) {
	c := NewClass("p", "C")
	c.AddField(NewField("String", "name"))
	c.AddField(NewField("int", "name")) // same name, ignored
	assert.Len(t, c.fields, 1)
}

func countOccurrences(haystack, needle string) int {
	count := 0
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if haystack[i:i+len(needle)] == needle {
			count++
			i += len(needle) - 1
		}
	}
	return count
}
