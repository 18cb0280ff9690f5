package main

// General API documentation for swaggo. The document itself lives in
// internal/httpapi/docs and is served when built with -tags=swagger.
//
// @title           servecore API
// @version         0.1
// @description     Task scheduling, model lifecycle and result caching for AI serving.
//
// @BasePath  /
//
// @schemes http
